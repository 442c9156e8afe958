package interfaces

import (
	"context"

	"github.com/secmon-lab/grc-risk/pkg/domain/model"
)

type DocumentRepository interface {
	// Create stores a document with auto-generated ID
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// ListByRisk returns documents related to a risk ordered by ID
	ListByRisk(ctx context.Context, riskID int64) ([]*model.Document, error)

	// Delete removes a document by ID
	Delete(ctx context.Context, id int64) error

	// DeleteByRisk removes every document related to a risk
	DeleteByRisk(ctx context.Context, riskID int64) error
}

type RiskObjectRepository interface {
	// Create stores a mapping with auto-generated ID
	Create(ctx context.Context, obj *model.RiskObject) (*model.RiskObject, error)

	// Get retrieves a mapping by ID
	Get(ctx context.Context, id int64) (*model.RiskObject, error)

	// ListByRisk returns mappings of a risk ordered by ID
	ListByRisk(ctx context.Context, riskID int64) ([]*model.RiskObject, error)

	// DeleteByRisk removes every mapping of a risk
	DeleteByRisk(ctx context.Context, riskID int64) error
}

type PersonRepository interface {
	Get(ctx context.Context, id int64) (*model.Person, error)
	Put(ctx context.Context, person *model.Person) error
}

type ContextRepository interface {
	Get(ctx context.Context, id int64) (*model.Context, error)
	Put(ctx context.Context, c *model.Context) error
}
