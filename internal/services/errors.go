package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrConfiguration = errors.New("configuration error")
	ErrUnavailable   = errors.New("capability unavailable")
	ErrWorkspace     = errors.New("workspace error")
	ErrExtraction    = errors.New("extraction error")
	ErrVerification  = errors.New("verification failure")
	ErrConversion    = errors.New("conversion error")
	ErrPack          = errors.New("pack error")
	ErrTimestamp     = errors.New("timestamp preservation error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind maps an error to a short, stable label suitable for persistence and
// log fields. Unclassified errors report "unknown".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrWorkspace):
		return "workspace"
	case errors.Is(err, ErrExtraction):
		return "extraction"
	case errors.Is(err, ErrVerification):
		return "verification"
	case errors.Is(err, ErrConversion):
		return "conversion"
	case errors.Is(err, ErrPack):
		return "pack"
	case errors.Is(err, ErrTimestamp):
		return "timestamp"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
