package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConversion()
	c.normalizeArchive()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv(cacheDirEnv); ok && strings.TrimSpace(value) != "" {
		c.Paths.CacheDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}

	var err error
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeConversion() {
	c.Conversion.Engine = strings.ToLower(strings.TrimSpace(c.Conversion.Engine))
	if c.Conversion.Engine == "" {
		c.Conversion.Engine = defaultConversionEngine
	}

	ext := strings.ToLower(strings.TrimSpace(c.Conversion.DestExtension))
	if ext == "" {
		ext = defaultDestExtension
		if c.Conversion.Engine == EngineImaging {
			ext = defaultImagingExtension
		}
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Conversion.DestExtension = ext

	c.Conversion.MagickBinary = strings.TrimSpace(c.Conversion.MagickBinary)
	if c.Conversion.MagickBinary == "" {
		if value, ok := os.LookupEnv(magickBinaryEnv); ok {
			c.Conversion.MagickBinary = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeArchive() {
	c.Archive.Engine = strings.ToLower(strings.TrimSpace(c.Archive.Engine))
	switch c.Archive.Engine {
	case "":
		c.Archive.Engine = defaultArchiveEngine
	case "7zip", "7-zip", "sevenzip":
		c.Archive.Engine = EngineSevenZip
	}
	c.Archive.SevenZipBinary = strings.TrimSpace(c.Archive.SevenZipBinary)
	if c.Archive.SevenZipBinary == "" {
		if value, ok := os.LookupEnv(sevenZipBinaryEnv); ok {
			c.Archive.SevenZipBinary = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
