package interfaces

import (
	"context"

	"github.com/secmon-lab/grc-risk/pkg/domain/model"
)

// RiskAPI is the remote resource a client side risk model is bound to
type RiskAPI interface {
	// List fetches every risk from the collection endpoint
	List(ctx context.Context) ([]*model.Risk, error)

	// Get fetches one risk. Fails with model.ErrNotFound for unknown ids
	Get(ctx context.Context, id int64) (*model.Risk, error)

	// Create posts a new risk and returns the server assigned record
	Create(ctx context.Context, risk *model.Risk) (*model.Risk, error)

	// Update replaces the risk identified by risk.ID
	Update(ctx context.Context, risk *model.Risk) (*model.Risk, error)

	// Delete removes a risk. Fails with model.ErrNotFound when already absent
	Delete(ctx context.Context, id int64) error
}

// DocumentAPI lists documents related to a risk
type DocumentAPI interface {
	ListDocuments(ctx context.Context, riskID int64) ([]*model.Document, error)
}

type RiskRepository interface {
	// Create stores a new risk with auto-generated ID
	Create(ctx context.Context, risk *model.Risk) (*model.Risk, error)

	// Get retrieves a risk by ID
	Get(ctx context.Context, id int64) (*model.Risk, error)

	// List retrieves all risks ordered by ID
	List(ctx context.Context) ([]*model.Risk, error)

	// FindByTitle returns risks whose title equals title ignoring case
	FindByTitle(ctx context.Context, title string) ([]*model.Risk, error)

	// Update replaces an existing risk
	Update(ctx context.Context, risk *model.Risk) (*model.Risk, error)

	// Delete deletes a risk by ID
	Delete(ctx context.Context, id int64) error
}
