package interfaces

import (
	"context"

	"github.com/secmon-lab/grc-risk/pkg/domain/model"
)

// PersonResolver resolves Person stubs
type PersonResolver interface {
	GetPerson(ctx context.Context, id int64) (*model.Person, error)
}

// ContextResolver resolves Context stubs
type ContextResolver interface {
	GetContext(ctx context.Context, id int64) (*model.Context, error)
}

// RiskObjectResolver resolves RiskObject stubs
type RiskObjectResolver interface {
	GetRiskObject(ctx context.Context, id int64) (*model.RiskObject, error)
}
