package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInput marks unusable caller input (blank script, no timestamps, missing media).
	ErrInput = errors.New("input error")
	// ErrCorrupt marks archives whose document is missing or unparseable.
	ErrCorrupt = errors.New("container corrupt")
	// ErrResource marks I/O failures while copying, extracting, or writing.
	ErrResource = errors.New("resource error")
	// ErrValidation marks models that violate referential integrity.
	ErrValidation    = errors.New("validation error")
	ErrExternalTool  = errors.New("external tool error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrResource
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps an operation error to the process exit status used by the CLI.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInput), errors.Is(err, ErrConfiguration):
		return 2
	case errors.Is(err, ErrCorrupt), errors.Is(err, ErrValidation):
		return 3
	default:
		return 1
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
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
