package minify

import (
	"bookminify/internal/config"
	"bookminify/internal/imageconv"
)

// Settings is the read-only configuration of a Minifier.
type Settings struct {
	CacheDir      string
	MinBytes      int64
	HugeBytes     int64
	Huge          imageconv.Profile
	Middle        imageconv.Profile
	UsefulPercent float64
}

// SettingsFromConfig maps the conversion, gate, and path sections of cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		CacheDir:  cfg.Paths.CacheDir,
		MinBytes:  cfg.MinThresholdBytes(),
		HugeBytes: cfg.HugeThresholdBytes(),
		Huge: imageconv.Profile{
			Name:               "huge",
			Quality:            cfg.Conversion.Quality,
			ResizeMaxDimension: cfg.Conversion.ResizeDimension,
			DestExtension:      cfg.Conversion.DestExtension,
		},
		Middle: imageconv.Profile{
			Name:          "middle",
			Quality:       cfg.Conversion.MiddleQuality,
			DestExtension: cfg.Conversion.DestExtension,
		},
		UsefulPercent: cfg.Gate.UsefulPercent,
	}
}
