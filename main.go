// Command tilemerge trains and plays agents for the tile-merging puzzle.
//
// It supports four commands:
//  1. "train" – runs a training profile, optionally serving a live spectator feed and writing a chart
//  2. "play" – plays a single episode with a chosen agent and prints every board
//  3. "manual" – plays a game in the terminal with the arrow keys
//  4. "configs" – lists the training profiles in the config directory
//
// Global flags control the config directory, debug logging, the log format
// and colour output. Flags can also be set from the environment or a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/tilemerge/game/agent"
	"github.com/wricardo/mcp-training/tilemerge/game/config"
	"github.com/wricardo/mcp-training/tilemerge/game/render"
	"github.com/wricardo/mcp-training/tilemerge/game/report"
	"github.com/wricardo/mcp-training/tilemerge/game/service"
	"github.com/wricardo/mcp-training/tilemerge/game/session"
	"github.com/wricardo/mcp-training/tilemerge/game/tui"
	"github.com/wricardo/mcp-training/tilemerge/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tile Merge Trainer"
)

// getConfigDirDefault returns the default configuration directory.
// It first honors the CONFIG_DIR environment variable, then falls back to "configs".
func getConfigDirDefault() string {
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		return configDir
	}
	return "configs"
}

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the command tree. Command output goes to stdout, logs to stderr.
func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "tilemerge",
		Usage:     AppName,
		Version:   Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   getConfigDirDefault(),
				Usage:   "directory containing training profiles",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "log format: text or json",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Usage:   "disable coloured boards",
				Sources: cli.EnvVars("NO_COLOR"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "train",
				Usage: "train an agent with a profile",
				Flags: append(profileFlags(),
					&cli.IntFlag{Name: "episodes", Usage: "episode count override"},
					&cli.StringFlag{Name: "table", Usage: "value table path override (.parquet or .db)"},
					&cli.StringFlag{Name: "history", Usage: "episode history path override (.parquet)"},
					&cli.StringFlag{Name: "chart", Usage: "write an HTML learning curve to this path"},
					&cli.StringFlag{
						Name:    "listen",
						Usage:   "serve a spectator websocket feed on this address, e.g. :8080",
						Sources: cli.EnvVars("LISTEN_ADDR"),
					},
					&cli.BoolFlag{Name: "turns", Usage: "also broadcast every move on the spectator feed"},
				),
				Action: runTrain,
			},
			{
				Name:  "play",
				Usage: "play one episode and print every board",
				Flags: append(profileFlags(),
					&cli.StringFlag{Name: "agent", Usage: "agent kind override: qlearn, random or priority"},
					&cli.StringFlag{Name: "table", Usage: "value table path override"},
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only print the final board"},
				),
				Action: runPlay,
			},
			{
				Name:   "manual",
				Usage:  "play in the terminal with the arrow keys",
				Flags:  profileFlags(),
				Action: runManual,
			},
			{
				Name:   "configs",
				Usage:  "list training profiles",
				Action: runConfigs,
			},
		},
	}
}

// profileFlags are the profile selection flags shared by train, play and manual
func profileFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "training profile name (default profile when empty)",
			Sources: cli.EnvVars("TILEMERGE_CONFIG"),
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "random seed override (0 keeps the profile seed)",
		},
	}
}

// newLogger builds the process logger from the --debug and --log-format flags
func newLogger(w io.Writer, debug bool, format string) (*slog.Logger, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
	}
}

// initializeServices wires the profile manager and the training service.
func initializeServices(configDir string, logger *slog.Logger) (service.TrainingService, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	return service.NewTrainingService(configManager, logger), nil
}

// setup builds the logger and service from the root flags
func setup(cmd *cli.Command) (*slog.Logger, service.TrainingService, error) {
	root := cmd.Root()
	logger, err := newLogger(root.ErrWriter, root.Bool("debug"), root.String("log-format"))
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)

	svc, err := initializeServices(root.String("config-dir"), logger)
	if err != nil {
		return nil, nil, err
	}
	return logger, svc, nil
}

// loadProfile returns a copy of the selected profile with the shared
// overrides applied
func loadProfile(ctx context.Context, cmd *cli.Command, svc service.TrainingService) (*service.TrainingConfig, error) {
	loaded, err := svc.LoadConfig(ctx, cmd.String("config"))
	if err != nil {
		return nil, err
	}
	cfg := *loaded

	if seed := cmd.Int64("seed"); seed != 0 {
		cfg.Seed = seed
	}
	if cmd.IsSet("table") {
		cfg.TablePath = cmd.String("table")
	}
	return &cfg, nil
}

func runTrain(ctx context.Context, cmd *cli.Command) error {
	logger, svc, err := setup(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadProfile(ctx, cmd, svc)
	if err != nil {
		return err
	}
	if episodes := cmd.Int("episodes"); episodes > 0 {
		cfg.Episodes = episodes
	}
	if cmd.IsSet("history") {
		cfg.HistoryPath = cmd.String("history")
	}

	var observers []service.EpisodeObserver
	if addr := cmd.String("listen"); addr != "" {
		hub := websocket.NewHub(logger, cmd.Bool("turns"))
		hubCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go hub.Run(hubCtx)

		srv := serveFeed(addr, hub, logger)
		defer shutdownFeed(srv, logger)
		observers = append(observers, hub)
	}

	rep, err := svc.Train(ctx, cfg, observers...)
	if rep != nil {
		printReport(cmd.Root().Writer, rep)
		if path := cmd.String("chart"); path != "" {
			if chartErr := report.WriteHTML(path, rep, report.DefaultWindow); chartErr != nil {
				return chartErr
			}
			logger.Info("learning curve written", "path", path)
		}
	}
	// an interrupted run still saved its table and printed a partial report
	if errors.Is(err, context.Canceled) && rep != nil {
		return nil
	}
	return err
}

// serveFeed starts the spectator HTTP server in the background
func serveFeed(addr string, hub *websocket.Hub, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("spectator feed listening", "url", fmt.Sprintf("ws://%s/ws?run=<run_id>", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("spectator feed failed", "error", err)
		}
	}()
	return srv
}

// shutdownFeed stops the spectator server with a timeout
func shutdownFeed(srv *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("spectator feed shutdown error", "error", err)
	}
}

func printReport(w io.Writer, r *service.TrainingReport) {
	fmt.Fprintf(w, "Run:         %s\n", r.RunID)
	fmt.Fprintf(w, "Profile:     %s (%s)\n", r.ConfigName, r.AgentKind)
	fmt.Fprintf(w, "Episodes:    %d in %s\n", len(r.Episodes), r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Wins:        %d (%.1f%%)\n", r.Wins, 100*r.WinRate())
	fmt.Fprintf(w, "Best score:  %d\n", r.BestScore)
	fmt.Fprintf(w, "Best tile:   %d\n", r.BestTile)
	fmt.Fprintf(w, "Mean score:  %.1f\n", r.MeanScore)
	if r.AgentKind == agent.KindQLearn {
		fmt.Fprintf(w, "Table size:  %d entries (frozen: %t)\n", r.TableSize, r.Frozen)
	}
}

func runPlay(ctx context.Context, cmd *cli.Command) error {
	_, svc, err := setup(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadProfile(ctx, cmd, svc)
	if err != nil {
		return err
	}
	if kind := cmd.String("agent"); kind != "" {
		cfg.AgentKind = agent.Kind(kind)
	}

	w := cmd.Root().Writer
	renderer := render.New(!cmd.Root().Bool("no-color"))

	var hook session.TurnHook
	if !cmd.Bool("quiet") {
		hook = func(ev session.TurnEvent) {
			fmt.Fprintf(w, "turn %d: %s  score %d\n%s\n", ev.Turn, ev.Move, ev.Score, renderer.Board(ev.Board))
		}
	}

	res, err := svc.PlayOnce(ctx, cfg, hook)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s\n", renderer.Board(res.Board))
	fmt.Fprintf(w, "Final score: %d  max tile: %d  turns: %d  (%s)\n", res.Score, res.MaxTile, res.Turns, res.Reason)
	return nil
}

func runManual(ctx context.Context, cmd *cli.Command) error {
	_, svc, err := setup(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadProfile(ctx, cmd, svc)
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	renderer := render.New(!cmd.Root().Bool("no-color"))

	res, err := tui.Run(ctx, cfg.Game, rand.New(rand.NewSource(seed)), renderer)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "Final score: %d  max tile: %d  turns: %d\n", res.Score, res.MaxTile, res.Turns)
	return nil
}

func runConfigs(ctx context.Context, cmd *cli.Command) error {
	_, svc, err := setup(cmd)
	if err != nil {
		return err
	}
	configs, err := svc.ListConfigs(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAGENT\tBOARD\tGOAL\tEPISODES\tDESCRIPTION")
	for _, c := range configs {
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%d\t%d\t%s\n", c.ConfigID, c.AgentKind, c.Dim, c.Dim, c.Goal, c.Episodes, c.Description)
	}
	return tw.Flush()
}
