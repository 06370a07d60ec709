// Package config loads application configuration with viper and watches the
// config file for preference changes.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Config holds application configuration.
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Prefs    PrefsConfig    `mapstructure:"prefs" yaml:"prefs"`
	Listener ListenerConfig `mapstructure:"listener" yaml:"listener"`
	DnD      DnDConfig      `mapstructure:"dnd" yaml:"dnd"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Open     OpenConfig     `mapstructure:"open" yaml:"open"`
}

// StorageConfig selects where bookmarks are persisted.
type StorageConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// PrefsConfig holds the preferences pushed into the page state.
type PrefsConfig struct {
	CanEdit   bool   `mapstructure:"can_edit" yaml:"can_edit"`
	Incognito string `mapstructure:"incognito" yaml:"incognito"`
}

// ListenerConfig tunes event batching.
type ListenerConfig struct {
	QuietPeriod time.Duration `mapstructure:"quiet_period" yaml:"quiet_period"`
}

// DnDConfig tunes drag-and-drop timers.
type DnDConfig struct {
	ExpandDelay    time.Duration `mapstructure:"expand_delay" yaml:"expand_delay"`
	IndicatorDelay time.Duration `mapstructure:"indicator_delay" yaml:"indicator_delay"`
}

// OpenConfig selects how URLs are opened. An empty Browser uses the system
// opener, which cannot open incognito windows.
type OpenConfig struct {
	Browser string `mapstructure:"browser" yaml:"browser"`
}

// LogConfig configures the logger. An empty File disables logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// Default returns the default configuration rooted at dir.
func Default(dir string) Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    filepath.Join(dir, "bookmarks.db"),
		},
		Prefs: PrefsConfig{
			CanEdit:   true,
			Incognito: "enabled",
		},
		Listener: ListenerConfig{QuietPeriod: 10 * time.Millisecond},
		DnD: DnDConfig{
			ExpandDelay:    400 * time.Millisecond,
			IndicatorDelay: 100 * time.Millisecond,
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultDir returns ~/.config/bmgr.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmgr"), nil
}

// Manager reads configuration from a YAML file, environment variables
// (prefix BMGR) and defaults.
type Manager struct {
	v    *viper.Viper
	path string

	mu       sync.Mutex
	watching bool
	onChange []func(Config)
}

// Load reads the config file at path, writing the defaults first if the
// file does not exist. An empty path means ~/.config/bmgr/config.yaml.
func Load(path string) (*Manager, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	defaults := Default(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		// Non-fatal: a read-only home still runs on defaults.
		_ = writeDefaults(path, defaults)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BMGR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, defaults)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return &Manager{v: v, path: path}, nil
}

// Path returns the config file path.
func (m *Manager) Path() string {
	return m.path
}

// Config decodes the current configuration.
func (m *Manager) Config() (Config, error) {
	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Watch calls fn with the new configuration whenever the file changes.
func (m *Manager) Watch(fn func(Config)) {
	m.mu.Lock()
	m.onChange = append(m.onChange, fn)
	start := !m.watching
	m.watching = true
	m.mu.Unlock()

	if !start {
		return
	}
	m.v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := m.Config()
		if err != nil {
			return
		}
		m.mu.Lock()
		handlers := append([]func(Config){}, m.onChange...)
		m.mu.Unlock()
		for _, h := range handlers {
			h(cfg)
		}
	})
	m.v.WatchConfig()
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("prefs.can_edit", d.Prefs.CanEdit)
	v.SetDefault("prefs.incognito", d.Prefs.Incognito)
	v.SetDefault("listener.quiet_period", d.Listener.QuietPeriod)
	v.SetDefault("dnd.expand_delay", d.DnD.ExpandDelay)
	v.SetDefault("dnd.indicator_delay", d.DnD.IndicatorDelay)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("open.browser", d.Open.Browser)
}

func writeDefaults(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
