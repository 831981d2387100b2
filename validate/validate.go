// Command validate provides a small CLI that validates training profile JSON
// files in a config directory (../configs by default). It checks:
//   - JSON structure, rejecting unknown fields
//   - Game rules: board size, goal and turn limit
//   - Agent kind and learning parameters
//   - Episode and save cadence settings
//   - Storage paths: table and history file formats
//   - Reachability: the goal tile can be built on the board at all
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/tilemerge/game/agent"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
	"github.com/wricardo/mcp-training/tilemerge/game/service"
)

// ValidationResult captures the outcome of validating a single file.
// Errors make the profile invalid; Notes are informational.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Notes  []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) note(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single profile file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config service.TrainingConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if strings.TrimSpace(config.Name) == "" {
		result.fail("name is required")
	}

	// Game rules
	if err := engine.ValidateGameConfig(&config.Game); err != nil {
		result.fail("game: %v", err)
	} else if msg := checkGoalReachable(config.Game.Dim, config.Game.Goal); msg != "" {
		result.fail("%s", msg)
	}

	// Agent
	knownKind := false
	for _, k := range agent.Kinds {
		if config.AgentKind == k {
			knownKind = true
		}
	}
	if !knownKind {
		result.fail("unknown agent_kind %q (want one of %v)", config.AgentKind, agent.Kinds)
	}
	if config.AgentKind == agent.KindQLearn {
		if err := agent.ValidateParams(config.Agent); err != nil {
			result.fail("agent: %v", err)
		}
	}

	// Schedule
	if config.Episodes < 1 {
		result.fail("episodes must be at least 1, got %d", config.Episodes)
	}
	if config.SaveEvery < 0 {
		result.fail("save_every cannot be negative, got %d", config.SaveEvery)
	}

	validatePaths(&config, &result)

	// Anything the individual checks missed
	if result.Valid {
		if err := service.ValidateTrainingConfig(&config); err != nil {
			result.fail("%v", err)
		}
	}

	if result.Valid {
		result.note("✓ Name: %s", config.Name)
		result.note("✓ Board: %dx%d, goal %d", config.Game.Dim, config.Game.Dim, config.Game.Goal)
		result.note("✓ Agent: %s", config.AgentKind)
		result.note("✓ Episodes: %d", config.Episodes)
		if config.AgentKind == agent.KindQLearn {
			result.note("✓ Learning: alpha %.2f, epsilon %.2f, gamma %.2f", config.Agent.Alpha, config.Agent.Epsilon, config.Agent.Gamma)
			if config.Agent.NumTraining > config.Episodes {
				result.note("ℹ num_training (%d) exceeds episodes (%d): exploration stays on for the whole run", config.Agent.NumTraining, config.Episodes)
			}
			if config.TablePath == "" {
				result.note("ℹ No table_path: the learned table is discarded after the run")
			}
		}
		if config.SaveEvery > config.Episodes {
			result.note("ℹ save_every (%d) exceeds episodes (%d): the table is only saved at the end", config.SaveEvery, config.Episodes)
		}
	}

	return result
}

// validatePaths checks the storage formats implied by the file extensions.
func validatePaths(config *service.TrainingConfig, result *ValidationResult) {
	if config.TablePath != "" {
		switch strings.ToLower(filepath.Ext(config.TablePath)) {
		case ".parquet", ".db", ".sqlite", ".sqlite3":
		default:
			result.fail("table_path %q must end in .parquet, .db, .sqlite or .sqlite3", config.TablePath)
		}
		if config.AgentKind != "" && config.AgentKind != agent.KindQLearn {
			result.note("ℹ table_path is ignored by the %s agent", config.AgentKind)
		}
	}
	if config.HistoryPath != "" && strings.ToLower(filepath.Ext(config.HistoryPath)) != ".parquet" {
		result.fail("history_path %q must end in .parquet", config.HistoryPath)
	}
	if config.TablePath != "" && config.TablePath == config.HistoryPath {
		result.fail("table_path and history_path must differ")
	}
}

// checkGoalReachable reports a goal that no game on a dim x dim board can
// reach. Every merge needs a free cell to build the next power, so with n
// cells and spawns of at most 4 the largest tile is 2^(n+1).
func checkGoalReachable(dim, goal int) string {
	cells := dim * dim
	if cells+1 >= 62 {
		return ""
	}
	largest := 1 << (cells + 1)
	if goal > largest {
		return fmt.Sprintf("Goal %d is unreachable on a %dx%d board (largest possible tile %d)", goal, dim, dim, largest)
	}
	return ""
}

// validateDir validates every *.json file in dir and writes a report. It
// returns false if any profile is invalid.
func validateDir(w io.Writer, dir string) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("finding config files: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no profiles found in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Notes {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All profiles are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some profiles have errors")
	}
	return allValid, nil
}

// main validates every profile and exits with non-zero status if any are
// invalid.
func main() {
	cmd := &cli.Command{
		Name:  "validate",
		Usage: "validate training profiles",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "../configs",
				Usage:   "directory containing training profiles",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ok, err := validateDir(os.Stdout, cmd.String("dir"))
			if err != nil {
				return err
			}
			if !ok {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
