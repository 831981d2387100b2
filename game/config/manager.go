package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/tilemerge/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultConfigName is the profile used when none is requested
const DefaultConfigName = "classic"

// Manager handles training profile loading and caching
type Manager struct {
	configDir     string
	defaultConfig *service.TrainingConfig
	configs       map[string]*service.TrainingConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*service.TrainingConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// Dir returns the directory profiles are read from
func (m *Manager) Dir() string {
	return m.configDir
}

// LoadConfig loads a profile by name, with or without the .json extension
func (m *Manager) LoadConfig(name string) (*service.TrainingConfig, error) {
	name = strings.TrimSuffix(name, ".json")

	m.mu.RLock()
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	config, err := m.readConfig(name)
	if err != nil {
		return nil, err
	}
	m.configs[name] = config
	return config, nil
}

// readConfig parses and validates a profile file without touching the cache
func (m *Manager) readConfig(name string) (*service.TrainingConfig, error) {
	data, err := os.ReadFile(m.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config service.TrainingConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}
	if config.Name == "" {
		config.Name = name
	}

	if err := m.ValidateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// ValidateConfig checks a profile the same way LoadConfig does
func (m *Manager) ValidateConfig(config *service.TrainingConfig) error {
	if err := service.ValidateTrainingConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ListConfigs returns information about all valid profiles, sorted by ID
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")

		config, err := m.LoadConfig(name)
		if err != nil {
			// Skip invalid configs
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			AgentKind:   config.AgentKind,
			Dim:         config.Game.Dim,
			Goal:        config.Game.Goal,
			Episodes:    config.Episodes,
		})
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].ConfigID < configs[j].ConfigID
	})
	return configs, nil
}

// GetDefault returns the default profile
func (m *Manager) GetDefault() *service.TrainingConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// loadDefaultConfig loads the default profile, falling back to the first
// valid one and then to the built-in default
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultConfigName)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			m.setDefault(service.DefaultTrainingConfig())
			return nil
		}

		config, err = m.LoadConfig(configs[0].ConfigID)
		if err != nil {
			m.setDefault(service.DefaultTrainingConfig())
			return nil
		}
	}

	m.setDefault(config)
	return nil
}

func (m *Manager) setDefault(config *service.TrainingConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
}

// SaveConfig validates a profile and writes it to disk
func (m *Manager) SaveConfig(name string, config *service.TrainingConfig) error {
	if err := m.ValidateConfig(config); err != nil {
		return err
	}
	name = strings.TrimSuffix(name, ".json")

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.path(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()

	return nil
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.configDir, name+".json")
}
