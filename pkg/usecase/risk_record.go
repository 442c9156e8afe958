package usecase

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
)

// RiskRecord is an in-memory risk bound to a RiskModel. Attributes are read
// and written through the embedded Risk; the record carries the checks
// registered at construction and a client side id stable across saves.
type RiskRecord struct {
	*model.Risk

	cid       string
	validator *model.Validator
	saving    atomic.Bool
}

func newRiskRecord(attrs *model.Risk) *RiskRecord {
	if attrs == nil {
		attrs = &model.Risk{}
	}
	return &RiskRecord{
		Risk:      attrs.Copy(),
		cid:       uuid.Must(uuid.NewV7()).String(),
		validator: model.NewValidator(),
	}
}

// CID returns the client side id of the record
func (r *RiskRecord) CID() string {
	return r.cid
}

// Validator returns the checks registered for the record. Capabilities add
// their checks here during initialization.
func (r *RiskRecord) Validator() *model.Validator {
	return r.validator
}

// Snapshot returns a deep copy of the current attributes
func (r *RiskRecord) Snapshot() *model.Risk {
	return r.Risk.Copy()
}
