package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir string `toml:"cache_dir"`
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
}

// Conversion contains the image re-encoding profile settings.
type Conversion struct {
	Engine string `toml:"engine"`
	// Quality applies to files above the huge threshold, which are also downscaled.
	Quality int `toml:"quality"`
	// MiddleQuality applies to files between the min and huge thresholds.
	MiddleQuality    int     `toml:"middle_quality"`
	HugeThresholdMiB float64 `toml:"huge_threshold_mib"`
	MinThresholdMiB  float64 `toml:"min_threshold_mib"`
	ResizeDimension  int     `toml:"resize_dimension"`
	DestExtension    string  `toml:"dest_extension"`
	MagickBinary     string  `toml:"magick_binary"`
}

// Archive contains archive engine settings.
type Archive struct {
	Engine         string `toml:"engine"`
	SevenZipBinary string `toml:"sevenzip_binary"`
}

// Gate contains the useful-work threshold.
type Gate struct {
	UsefulPercent float64 `toml:"useful_percent"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for bookminify.
//
// Configuration sections by subsystem:
//   - Paths: working cache, logs, and the run history database
//   - Conversion: image engine and the huge/middle profiles
//   - Archive: archive engine used to list, extract, and pack
//   - Gate: minimum size reduction worth keeping
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Conversion Conversion `toml:"conversion"`
	Archive    Archive    `toml:"archive"`
	Gate       Gate       `toml:"gate"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bookminify/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("bookminify.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the working cache, log, and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HugeThresholdBytes returns the size above which the huge profile applies.
func (c *Config) HugeThresholdBytes() int64 {
	return mibToBytes(c.Conversion.HugeThresholdMiB)
}

// MinThresholdBytes returns the size below which images are copied verbatim.
func (c *Config) MinThresholdBytes() int64 {
	return mibToBytes(c.Conversion.MinThresholdMiB)
}

// HistoryPath returns the location of the run history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockDir returns the directory holding per-archive lock files.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.StateDir, "locks")
}

// MagickBinary returns the ImageMagick executable name.
func (c *Config) MagickBinary() string {
	if bin := strings.TrimSpace(c.Conversion.MagickBinary); bin != "" {
		return bin
	}
	return defaultMagickBinary
}

// SevenZipBinary returns the 7-Zip executable name.
func (c *Config) SevenZipBinary() string {
	if bin := strings.TrimSpace(c.Archive.SevenZipBinary); bin != "" {
		return bin
	}
	return defaultSevenZipBinary
}

func mibToBytes(mib float64) int64 {
	return int64(mib * 1024 * 1024)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "bookminify", "work")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/bookminify/work"
	}
	return filepath.Join(home, ".cache", "bookminify", "work")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
