package config

const (
	defaultLogDir           = "~/.local/share/bookminify/logs"
	defaultStateDir         = "~/.local/share/bookminify"
	defaultConversionEngine = EngineMagick
	defaultQuality          = 60
	defaultMiddleQuality    = 70
	defaultHugeThresholdMiB = 2
	defaultMinThresholdMiB  = 0.25
	defaultResizeDimension  = 2800
	defaultDestExtension    = ".webp"
	defaultImagingExtension = ".jpg"
	defaultMagickBinary     = "magick"
	defaultArchiveEngine    = EngineSevenZip
	defaultSevenZipBinary   = "7z"
	defaultUsefulPercent    = 20
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	cacheDirEnv             = "BOOKMINIFY_CACHE_DIR"
	magickBinaryEnv         = "BOOKMINIFY_MAGICK"
	sevenZipBinaryEnv       = "BOOKMINIFY_7Z"
)

// Engine names accepted by the conversion and archive sections.
const (
	EngineMagick   = "magick"
	EngineImaging  = "imaging"
	EngineSevenZip = "7z"
	EngineZip      = "zip"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir(),
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Conversion: Conversion{
			Engine:           defaultConversionEngine,
			Quality:          defaultQuality,
			MiddleQuality:    defaultMiddleQuality,
			HugeThresholdMiB: defaultHugeThresholdMiB,
			MinThresholdMiB:  defaultMinThresholdMiB,
			ResizeDimension:  defaultResizeDimension,
			DestExtension:    defaultDestExtension,
		},
		Archive: Archive{
			Engine: defaultArchiveEngine,
		},
		Gate: Gate{
			UsefulPercent: defaultUsefulPercent,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
