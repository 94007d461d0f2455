// Package config loads runtime settings from an optional YAML file and
// HOMEDASH_* environment variables. Environment values win.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "homedash.yaml"

type Config struct {
	DataDir     string `yaml:"data_dir"`
	BackupDir   string `yaml:"backup_dir"`
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`
	MetricsFile string `yaml:"metrics_file"`
	BcryptCost  int    `yaml:"bcrypt_cost"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DataDir:    "data",
		LogLevel:   "info",
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Load builds a Config from defaults, the YAML file at path and the
// environment, then validates it. An empty path falls back to DefaultFile,
// which may be absent; an explicit path must exist.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if getenv == nil {
		getenv = os.Getenv
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = filepath.Join(cfg.DataDir, "backups")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"HOMEDASH_DATA_DIR":     &c.DataDir,
		"HOMEDASH_BACKUP_DIR":   &c.BackupDir,
		"HOMEDASH_LOG_LEVEL":    &c.LogLevel,
		"HOMEDASH_LOG_FILE":     &c.LogFile,
		"HOMEDASH_METRICS_FILE": &c.MetricsFile,
	}
	for key, dst := range strs {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	if v := strings.TrimSpace(getenv("HOMEDASH_BCRYPT_COST")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HOMEDASH_BCRYPT_COST: %w", err)
		}
		c.BcryptCost = n
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("config: data_dir is required")
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("config: bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	// Backup records would be taken for a collection and restores would
	// overwrite them.
	if c.BackupDir != "" && sameDir(c.BackupDir, c.DataDir) {
		return fmt.Errorf("config: backup_dir must differ from data_dir %q", c.DataDir)
	}
	return nil
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
