package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"bookminify/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("BOOKMINIFY_CACHE_DIR", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantCache := filepath.Join(tempHome, ".cache", "bookminify", "work")
	if cfg.Paths.CacheDir != wantCache {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Paths.CacheDir, wantCache)
	}
	wantState := filepath.Join(tempHome, ".local", "share", "bookminify")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.Conversion.Engine != config.EngineMagick {
		t.Fatalf("expected magick engine by default, got %q", cfg.Conversion.Engine)
	}
	if cfg.Conversion.DestExtension != ".webp" {
		t.Fatalf("expected .webp destination by default, got %q", cfg.Conversion.DestExtension)
	}
	if cfg.Gate.UsefulPercent != 20 {
		t.Fatalf("expected 20%% useful work threshold, got %v", cfg.Gate.UsefulPercent)
	}
	if cfg.MagickBinary() != "magick" {
		t.Fatalf("unexpected magick binary: %q", cfg.MagickBinary())
	}
	if cfg.SevenZipBinary() != "7z" {
		t.Fatalf("unexpected 7z binary: %q", cfg.SevenZipBinary())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.CacheDir, cfg.Paths.LogDir, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "bookminify.toml")

	type payload struct {
		Paths struct {
			CacheDir string `toml:"cache_dir"`
		} `toml:"paths"`
		Conversion struct {
			Engine           string  `toml:"engine"`
			Quality          int     `toml:"quality"`
			HugeThresholdMiB float64 `toml:"huge_threshold_mib"`
			DestExtension    string  `toml:"dest_extension"`
		} `toml:"conversion"`
		Gate struct {
			UsefulPercent float64 `toml:"useful_percent"`
		} `toml:"gate"`
	}
	custom := payload{}
	custom.Paths.CacheDir = filepath.Join(tempDir, "work")
	custom.Conversion.Engine = " Imaging "
	custom.Conversion.Quality = 50
	custom.Conversion.HugeThresholdMiB = 4
	custom.Conversion.DestExtension = "JPG"
	custom.Gate.UsefulPercent = 35
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}
	t.Setenv("BOOKMINIFY_CACHE_DIR", "")

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.CacheDir != custom.Paths.CacheDir {
		t.Fatalf("expected cache dir from file, got %q", cfg.Paths.CacheDir)
	}
	if cfg.Conversion.Engine != config.EngineImaging {
		t.Fatalf("expected engine to be normalized, got %q", cfg.Conversion.Engine)
	}
	if cfg.Conversion.DestExtension != ".jpg" {
		t.Fatalf("expected dest extension to be normalized, got %q", cfg.Conversion.DestExtension)
	}
	if cfg.Conversion.Quality != 50 {
		t.Fatalf("expected quality 50, got %d", cfg.Conversion.Quality)
	}
	if got, want := cfg.HugeThresholdBytes(), int64(4*1024*1024); got != want {
		t.Fatalf("HugeThresholdBytes = %d, want %d", got, want)
	}
	if cfg.Conversion.MiddleQuality != config.Default().Conversion.MiddleQuality {
		t.Fatalf("expected middle quality default to survive partial file, got %d", cfg.Conversion.MiddleQuality)
	}
	if cfg.Gate.UsefulPercent != 35 {
		t.Fatalf("expected useful percent 35, got %v", cfg.Gate.UsefulPercent)
	}
}

func TestEnvVarOverridesCacheDir(t *testing.T) {
	override := filepath.Join(t.TempDir(), "env-cache")
	t.Setenv("BOOKMINIFY_CACHE_DIR", override)
	t.Setenv("BOOKMINIFY_MAGICK", "/opt/im/magick")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.CacheDir != override {
		t.Errorf("expected cache dir from env, got %q", cfg.Paths.CacheDir)
	}
	if cfg.MagickBinary() != "/opt/im/magick" {
		t.Errorf("expected magick binary from env, got %q", cfg.MagickBinary())
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "useful_percent") {
		t.Fatalf("sample config missing gate section: %s", contents)
	}

	cfg := config.Default()
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config does not validate: %v", err)
	}
	if !strings.Contains(cfg.Paths.StateDir, "bookminify") {
		t.Fatalf("expected state dir to contain bookminify, got %q", cfg.Paths.StateDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"quality too high", func(c *config.Config) { c.Conversion.Quality = 101 }},
		{"middle quality zero", func(c *config.Config) { c.Conversion.MiddleQuality = 0 }},
		{"huge threshold zero", func(c *config.Config) { c.Conversion.HugeThresholdMiB = 0 }},
		{"min above huge", func(c *config.Config) { c.Conversion.MinThresholdMiB = c.Conversion.HugeThresholdMiB + 1 }},
		{"resize zero", func(c *config.Config) { c.Conversion.ResizeDimension = 0 }},
		{"unknown engine", func(c *config.Config) { c.Conversion.Engine = "gimp" }},
		{"imaging webp", func(c *config.Config) {
			c.Conversion.Engine = config.EngineImaging
			c.Conversion.DestExtension = ".webp"
		}},
		{"magick jxl", func(c *config.Config) {
			c.Conversion.Engine = config.EngineMagick
			c.Conversion.DestExtension = ".jxl"
		}},
		{"magick heic", func(c *config.Config) {
			c.Conversion.Engine = config.EngineMagick
			c.Conversion.DestExtension = ".heic"
		}},
		{"unknown archive engine", func(c *config.Config) { c.Archive.Engine = "tar" }},
		{"gate above 100", func(c *config.Config) { c.Gate.UsefulPercent = 120 }},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cfg.Conversion.Engine = config.EngineMagick
	cfg.Conversion.DestExtension = ".webp"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("magick webp should validate: %v", err)
	}
}
