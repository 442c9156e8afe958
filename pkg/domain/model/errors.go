package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Sentinel errors shared by the client and server sides
var (
	ErrValidation = goerr.New("validation failed")
	ErrNotFound   = goerr.New("resource not found")
	ErrConflict   = goerr.New("resource conflict")
)

// Context keys for error values
const (
	RiskIDKey = "risk_id"
	FieldKey  = "field"
)

// Validation failure reasons
const (
	ReasonBlank       = "cannot be blank"
	ReasonNotUnique   = "must be unique"
	ReasonUnknownAttr = "is not a known attribute"
)

// FieldError is one failed check on one attribute
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) String() string {
	return e.Field + " " + e.Reason
}

// ValidationError lists every failed check of a record. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.String()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, ", "))
}

// Is makes errors.Is(err, ErrValidation) hold for any ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Fields returns the failed attribute names in order, without duplicates
func (e *ValidationError) Fields() []string {
	var fields []string
	seen := make(map[string]bool)
	for _, fe := range e.Errors {
		if seen[fe.Field] {
			continue
		}
		seen[fe.Field] = true
		fields = append(fields, fe.Field)
	}
	return fields
}

// Has reports whether field failed any check
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// AsValidationError extracts a ValidationError from err's chain
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
