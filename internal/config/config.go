// Package config resolves application settings from defaults, an optional
// YAML file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendNearest = "nearest"
	BackendDNN     = "dnn"
)

type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
	History HistoryConfig `yaml:"history"`
}

type ModelConfig struct {
	// Path to an OpenCV readable Real-ESRGAN x4 network. Empty selects the
	// nearest-neighbour backend.
	Path string `yaml:"path"`
	// Backend is the OpenCV DNN backend (default, opencv, cuda, openvino, ...).
	Backend string `yaml:"backend"`
	// Target is the OpenCV DNN target (cpu, cuda, opencl, ...).
	Target    string `yaml:"target"`
	Instances int    `yaml:"instances"`
}

type BatchConfig struct {
	MaxWorkers    int           `yaml:"max_workers"`
	AutoSave      bool          `yaml:"auto_save"`
	OutputDir     string        `yaml:"output_dir"`
	SuccessNotice time.Duration `yaml:"success_notice"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		Model: ModelConfig{
			Backend:   "default",
			Target:    "cpu",
			Instances: 1,
		},
		Batch: BatchConfig{
			MaxWorkers:    runtime.NumCPU(),
			OutputDir:     DownloadsDir(),
			SuccessNotice: 3 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
		History: HistoryConfig{Path: filepath.Join(Dir(), "history.db")},
	}
}

// Dir is the per-user configuration directory.
func Dir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "superres")
	}
	return filepath.Join(os.TempDir(), "superres")
}

// DefaultPath is where Load looks when no file is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DownloadsDir is the user's downloads folder, the default output location.
func DownloadsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(home, "Downloads")
}

// Load builds the configuration. A missing file at the default path is not an
// error; a missing explicit path is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("SUPERRES_MODEL"); ok {
		c.Model.Path = v
	}
	if v, ok := os.LookupEnv("SUPERRES_BACKEND"); ok {
		c.Model.Backend = v
	}
	if v, ok := os.LookupEnv("SUPERRES_TARGET"); ok {
		c.Model.Target = v
	}
	if v, ok := os.LookupEnv("SUPERRES_OUTPUT_DIR"); ok {
		c.Batch.OutputDir = v
	}
	if v, ok := os.LookupEnv("SUPERRES_AUTO_SAVE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SUPERRES_AUTO_SAVE %q: %w", v, err)
		}
		c.Batch.AutoSave = b
	}
	if v, ok := os.LookupEnv("SUPERRES_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SUPERRES_WORKERS %q: %w", v, err)
		}
		c.Batch.MaxWorkers = n
	}
	if v, ok := os.LookupEnv("SUPERRES_HISTORY"); ok {
		c.History.Enabled = true
		if v != "" && v != "1" && !strings.EqualFold(v, "true") {
			c.History.Path = v
		}
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if os.Getenv("DEBUG") == "1" {
		c.Logging.Level = "debug"
	}
	return nil
}

func (c *Config) normalize() {
	c.Model.Path = ExpandPath(c.Model.Path)
	c.Batch.OutputDir = ExpandPath(c.Batch.OutputDir)
	c.History.Path = ExpandPath(c.History.Path)
	if c.Model.Instances <= 0 {
		c.Model.Instances = 1
	}
	if c.Batch.MaxWorkers <= 0 {
		c.Batch.MaxWorkers = runtime.NumCPU()
	}
	if c.Batch.SuccessNotice <= 0 {
		c.Batch.SuccessNotice = 3 * time.Second
	}
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	if c.Batch.AutoSave && c.Batch.OutputDir == "" {
		return errors.New("auto-save requires an output directory")
	}
	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history requires a database path")
	}
	return nil
}

// BackendName reports which upscaling backend the config selects.
func (c Config) BackendName() string {
	if c.Model.Path == "" {
		return BackendNearest
	}
	return BackendDNN
}

// Save writes the config as YAML, creating the directory.
func (c Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExpandPath resolves a leading ~ to the home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// DisplayPath shortens paths under the home directory to ~/...
func DisplayPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	clean := filepath.Clean(path)
	if clean == home {
		return "~"
	}
	if rel, ok := strings.CutPrefix(clean, home+string(filepath.Separator)); ok {
		return "~" + string(filepath.Separator) + rel
	}
	return path
}
