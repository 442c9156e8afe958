package model

import (
	"context"
	"slices"
	"strings"
)

// CheckFunc inspects one attribute of r. A non-empty reason reports a
// validation failure; a non-nil error aborts validation entirely.
type CheckFunc func(ctx context.Context, r *Risk) (reason string, err error)

type rule struct {
	field string
	check CheckFunc
}

// Validator holds the checks registered for a record. Local checks run in
// registration order and every failure is collected. Remote checks run
// afterwards, only when no local check failed.
type Validator struct {
	rules  []rule
	remote []rule
}

// NewValidator creates an empty Validator
func NewValidator() *Validator {
	return &Validator{}
}

// Add registers a custom check for field
func (v *Validator) Add(field string, check CheckFunc) {
	v.rules = append(v.rules, rule{field: field, check: check})
}

// AddRemote registers a check that consults a backend, such as a uniqueness
// lookup. It is skipped while any local check fails, so a backend error never
// hides field failures of the record itself.
func (v *Validator) AddRemote(field string, check CheckFunc) {
	v.remote = append(v.remote, rule{field: field, check: check})
}

// ValidatePresenceOf requires field to hold a non-blank value
func (v *Validator) ValidatePresenceOf(field string) {
	v.Add(field, func(_ context.Context, r *Risk) (string, error) {
		ok, known := r.present(field)
		if !known {
			return ReasonUnknownAttr, nil
		}
		if !ok {
			return ReasonBlank, nil
		}
		return "", nil
	})
}

// ValidateInclusionOf requires a set scalar field to be one of values. Blank
// values pass; combine with ValidatePresenceOf to require one.
func (v *Validator) ValidateInclusionOf(field string, values []string) {
	allowed := slices.Clone(values)
	v.Add(field, func(_ context.Context, r *Risk) (string, error) {
		value, known := r.attribute(field)
		if !known {
			return ReasonUnknownAttr, nil
		}
		if value == "" || slices.Contains(allowed, value) {
			return "", nil
		}
		return "must be one of " + strings.Join(allowed, ", "), nil
	})
}

// Len returns the number of registered checks
func (v *Validator) Len() int {
	return len(v.rules) + len(v.remote)
}

// Validate runs every check against r. It returns a *ValidationError listing
// all failures, nil when r is valid, or the first infrastructure error.
func (v *Validator) Validate(ctx context.Context, r *Risk) error {
	failures, err := run(ctx, v.rules, r)
	if err != nil {
		return err
	}
	if len(failures) > 0 {
		return &ValidationError{Errors: failures}
	}

	failures, err = run(ctx, v.remote, r)
	if err != nil {
		return err
	}
	if len(failures) > 0 {
		return &ValidationError{Errors: failures}
	}
	return nil
}

func run(ctx context.Context, rules []rule, r *Risk) ([]FieldError, error) {
	var failures []FieldError
	for _, rl := range rules {
		reason, err := rl.check(ctx, r)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			failures = append(failures, FieldError{Field: rl.field, Reason: reason})
		}
	}
	return failures, nil
}
