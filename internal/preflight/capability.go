package preflight

import (
	"strings"

	"bookminify/internal/config"
	"bookminify/internal/deps"
)

// Capability is the startup snapshot of whether images can be re-encoded.
// It is computed once and passed by value; nothing mutates it during a run.
type Capability struct {
	Engine    string
	Available bool
	Detail    string
}

// ProbeConverter reports whether the configured conversion engine can run.
func ProbeConverter(cfg *config.Config) Capability {
	if cfg == nil {
		return Capability{Detail: "no configuration"}
	}
	engine := strings.TrimSpace(cfg.Conversion.Engine)
	switch engine {
	case config.EngineImaging:
		return Capability{Engine: engine, Available: true, Detail: "built in"}
	case config.EngineMagick:
		status := deps.Resolve(deps.Requirement{
			Name:    converterDependencyName,
			Command: cfg.MagickBinary(),
		})
		if !status.Available {
			return Capability{Engine: engine, Detail: "No magick: " + status.Detail}
		}
		return Capability{Engine: engine, Available: true, Detail: status.Path}
	default:
		return Capability{Engine: engine, Detail: "unknown conversion engine"}
	}
}

// Summary renders the capability for status output.
func (c Capability) Summary() string {
	if c.Available {
		return c.Engine + " ready"
	}
	return c.Detail
}
