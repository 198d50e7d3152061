package incident

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	ErrNotFound   = errors.New("incident not found")
	ErrStorage    = errors.New("incident storage failed")
	ErrValidation = errors.New("validation failed")
)

// ValidationError carries field-level messages keyed by input name so they can be
// rendered back next to the offending dialog field.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
