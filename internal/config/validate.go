package config

import (
	"errors"
	"fmt"

	"bookminify/internal/imagefile"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateGate(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateConversion() error {
	switch c.Conversion.Engine {
	case EngineMagick:
	case EngineImaging:
		switch c.Conversion.DestExtension {
		case ".jpg", ".jpeg", ".png":
		default:
			return fmt.Errorf("conversion.dest_extension %q is not supported by the imaging engine (use .jpg or .png)", c.Conversion.DestExtension)
		}
	default:
		return fmt.Errorf("conversion.engine: unsupported value %q (want %q or %q)", c.Conversion.Engine, EngineMagick, EngineImaging)
	}
	if err := ensureQuality(map[string]int{
		"conversion.quality":        c.Conversion.Quality,
		"conversion.middle_quality": c.Conversion.MiddleQuality,
	}); err != nil {
		return err
	}
	if c.Conversion.HugeThresholdMiB <= 0 {
		return errors.New("conversion.huge_threshold_mib must be positive")
	}
	if c.Conversion.MinThresholdMiB < 0 {
		return errors.New("conversion.min_threshold_mib must not be negative")
	}
	if c.Conversion.MinThresholdMiB > c.Conversion.HugeThresholdMiB {
		return errors.New("conversion.min_threshold_mib must not exceed conversion.huge_threshold_mib")
	}
	if c.Conversion.ResizeDimension <= 0 {
		return errors.New("conversion.resize_dimension must be positive")
	}
	if len(c.Conversion.DestExtension) < 2 {
		return errors.New("conversion.dest_extension must name a file extension")
	}
	// Converted pages must still count as images or the repacked archive
	// fails the page-set comparison.
	if !imagefile.IsImage("page" + c.Conversion.DestExtension) {
		return fmt.Errorf("conversion.dest_extension %q is not a recognized image extension", c.Conversion.DestExtension)
	}
	return nil
}

func (c *Config) validateArchive() error {
	switch c.Archive.Engine {
	case EngineSevenZip, EngineZip:
		return nil
	default:
		return fmt.Errorf("archive.engine: unsupported value %q (want %q or %q)", c.Archive.Engine, EngineSevenZip, EngineZip)
	}
}

func (c *Config) validateGate() error {
	if c.Gate.UsefulPercent < 0 || c.Gate.UsefulPercent > 100 {
		return errors.New("gate.useful_percent must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func ensureQuality(values map[string]int) error {
	for key, value := range values {
		if value < 1 || value > 100 {
			return fmt.Errorf("%s must be between 1 and 100", key)
		}
	}
	return nil
}
