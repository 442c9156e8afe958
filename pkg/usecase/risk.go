package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/domain/types"
	"github.com/secmon-lab/grc-risk/pkg/utils/errutil"
	"github.com/secmon-lab/grc-risk/pkg/utils/logging"
)

const referenceURLTitle = "Reference URL"

// RiskUseCase implements the server side of the risk resource
type RiskUseCase struct {
	repo       interfaces.Repository
	descriptor *model.Descriptor
	bus        interfaces.EventBus
}

type RiskUseCaseOption func(*RiskUseCase)

// WithRiskEventBus announces every stored create and update on bus
func WithRiskEventBus(bus interfaces.EventBus) RiskUseCaseOption {
	return func(uc *RiskUseCase) {
		uc.bus = bus
	}
}

func NewRiskUseCase(repo interfaces.Repository, opts ...RiskUseCaseOption) *RiskUseCase {
	uc := &RiskUseCase{
		repo:       repo,
		descriptor: model.RiskDescriptor(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *RiskUseCase) emit(ctx context.Context, op model.Operation, risk *model.Risk) {
	if uc.bus == nil {
		return
	}
	uc.bus.Emit(ctx, model.Event{
		Name:      model.EventRefreshRelatedDocuments,
		Operation: op,
		Risk:      risk.Copy(),
	})
}

// Descriptor returns the descriptor the routes are built from
func (uc *RiskUseCase) Descriptor() *model.Descriptor {
	return uc.descriptor
}

func (uc *RiskUseCase) validate(ctx context.Context, risk *model.Risk) error {
	v := model.NewValidator()
	uc.descriptor.RegisterRules(v)
	registerPeopleRules(v)
	v.AddRemote("title", uc.uniqueTitle)
	return v.Validate(ctx, risk)
}

func (uc *RiskUseCase) uniqueTitle(ctx context.Context, risk *model.Risk) (string, error) {
	title := strings.TrimSpace(risk.Title)
	if title == "" {
		return "", nil
	}

	found, err := uc.repo.Risk().FindByTitle(ctx, title)
	if err != nil {
		return "", goerr.Wrap(err, "failed to find risks by title")
	}
	for _, other := range found {
		if other.ID != risk.ID {
			return model.ReasonNotUnique, nil
		}
	}
	return "", nil
}

// normalize applies the server defaults to an incoming risk
func (uc *RiskUseCase) normalize(ctx context.Context, risk *model.Risk) {
	risk.Title = strings.TrimSpace(risk.Title)
	risk.Status = risk.Status.Normalize()
	if risk.Owners == nil {
		risk.Owners = []*model.Stub{}
	}
	if actor := model.ActorFromContext(ctx); actor != nil {
		risk.ModifiedBy = actor
	}
}

// CreateRisk validates and stores a new risk. The slug defaults to RISK-<id>,
// objects are materialised as risk objects and the reference URL is mirrored
// as a document.
func (uc *RiskUseCase) CreateRisk(ctx context.Context, input *model.Risk) (*model.Risk, error) {
	if input == nil {
		return nil, goerr.New("risk is required")
	}

	risk := input.Copy()
	risk.ID = 0
	risk.RiskObjects = nil
	uc.normalize(ctx, risk)

	if err := uc.validate(ctx, risk); err != nil {
		return nil, err
	}

	created, err := uc.repo.Risk().Create(ctx, risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create risk")
	}

	if strings.TrimSpace(created.Slug) == "" {
		created.Slug = fmt.Sprintf("RISK-%d", created.ID)
	}
	if err := uc.syncRelated(ctx, created, nil); err != nil {
		uc.rollbackCreate(ctx, created.ID)
		return nil, err
	}

	updated, err := uc.repo.Risk().Update(ctx, created)
	if err != nil {
		uc.rollbackCreate(ctx, created.ID)
		return nil, goerr.Wrap(err, "failed to store derived risk attributes", goerr.V(model.RiskIDKey, created.ID))
	}

	logging.From(ctx).Info("risk created", "risk_id", updated.ID, "slug", updated.Slug)
	uc.emit(ctx, model.OperationCreate, updated)
	return updated, nil
}

// UpdateRisk replaces the attributes of an existing risk
func (uc *RiskUseCase) UpdateRisk(ctx context.Context, id int64, input *model.Risk) (*model.Risk, error) {
	if input == nil {
		return nil, goerr.New("risk is required")
	}

	existing, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(model.RiskIDKey, id))
	}

	risk := input.Copy()
	risk.ID = id
	risk.CreatedAt = existing.CreatedAt
	if strings.TrimSpace(risk.Slug) == "" {
		risk.Slug = existing.Slug
	}
	if risk.ModifiedBy.IsZero() {
		risk.ModifiedBy = existing.ModifiedBy
	}
	uc.normalize(ctx, risk)

	if err := uc.validate(ctx, risk); err != nil {
		return nil, err
	}

	if err := uc.syncRelated(ctx, risk, existing); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Risk().Update(ctx, risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk", goerr.V(model.RiskIDKey, id))
	}

	logging.From(ctx).Info("risk updated", "risk_id", id)
	uc.emit(ctx, model.OperationUpdate, updated)
	return updated, nil
}

// syncRelated rebuilds the risk objects and the reference URL document of
// risk when they differ from previous. previous is nil for a new risk.
func (uc *RiskUseCase) syncRelated(ctx context.Context, risk, previous *model.Risk) error {
	if previous == nil || !sameStubs(risk.Objects, previous.Objects) {
		if previous != nil {
			if err := uc.repo.RiskObject().DeleteByRisk(ctx, risk.ID); err != nil {
				return goerr.Wrap(err, "failed to delete risk objects", goerr.V(model.RiskIDKey, risk.ID))
			}
		}

		stubs := make([]*model.Stub, 0, len(risk.Objects))
		for _, obj := range risk.Objects {
			if obj.IsZero() {
				continue
			}
			created, err := uc.repo.RiskObject().Create(ctx, &model.RiskObject{RiskID: risk.ID, Object: obj})
			if err != nil {
				return goerr.Wrap(err, "failed to create risk object", goerr.V(model.RiskIDKey, risk.ID))
			}
			stubs = append(stubs, created.Stub())
		}
		risk.RiskObjects = stubs
	} else {
		risk.RiskObjects = previous.RiskObjects
	}

	prevURL := ""
	if previous != nil {
		prevURL = previous.ReferenceURL
	}
	if previous == nil || strings.TrimSpace(risk.ReferenceURL) != strings.TrimSpace(prevURL) {
		if err := uc.syncReferenceURL(ctx, risk); err != nil {
			return err
		}
	}
	return nil
}

func (uc *RiskUseCase) syncReferenceURL(ctx context.Context, risk *model.Risk) error {
	link := strings.TrimSpace(risk.ReferenceURL)

	docs, err := uc.repo.Document().ListByRisk(ctx, risk.ID)
	if err != nil {
		return goerr.Wrap(err, "failed to list documents", goerr.V(model.RiskIDKey, risk.ID))
	}

	exists := false
	for _, doc := range docs {
		if doc.DocumentType != types.DocumentTypeReferenceURL {
			continue
		}
		if doc.Link == link {
			exists = true
			continue
		}
		if err := uc.repo.Document().Delete(ctx, doc.ID); err != nil {
			return goerr.Wrap(err, "failed to delete reference url document", goerr.V("document_id", doc.ID))
		}
	}

	if link == "" || exists {
		return nil
	}

	if _, err := uc.repo.Document().Create(ctx, &model.Document{
		RiskID:       risk.ID,
		Title:        referenceURLTitle,
		Link:         link,
		DocumentType: types.DocumentTypeReferenceURL,
	}); err != nil {
		return goerr.Wrap(err, "failed to create reference url document", goerr.V(model.RiskIDKey, risk.ID))
	}
	return nil
}

func sameStubs(a, b []*model.Stub) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].IsZero() != b[i].IsZero() {
			return false
		}
		if !a[i].IsZero() && (a[i].ID != b[i].ID || a[i].Type != b[i].Type) {
			return false
		}
	}
	return true
}

func (uc *RiskUseCase) GetRisk(ctx context.Context, id int64) (*model.Risk, error) {
	risk, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(model.RiskIDKey, id))
	}
	return risk, nil
}

func (uc *RiskUseCase) ListRisks(ctx context.Context) ([]*model.Risk, error) {
	risks, err := uc.repo.Risk().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks")
	}
	return risks, nil
}

// DeleteRisk removes a risk with its risk objects and documents
func (uc *RiskUseCase) DeleteRisk(ctx context.Context, id int64) error {
	if err := uc.repo.Risk().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete risk", goerr.V(model.RiskIDKey, id))
	}
	if err := uc.deleteRelated(ctx, id); err != nil {
		return err
	}

	logging.From(ctx).Info("risk deleted", "risk_id", id)
	return nil
}

func (uc *RiskUseCase) deleteRelated(ctx context.Context, id int64) error {
	if err := uc.repo.RiskObject().DeleteByRisk(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete risk objects", goerr.V(model.RiskIDKey, id))
	}
	if err := uc.repo.Document().DeleteByRisk(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete documents", goerr.V(model.RiskIDKey, id))
	}
	return nil
}

// rollbackCreate removes a risk whose creation failed half way, together with
// whatever mappings and documents were stored for it. Failures are reported
// but do not replace the original error.
func (uc *RiskUseCase) rollbackCreate(ctx context.Context, id int64) {
	if err := uc.deleteRelated(ctx, id); err != nil {
		errutil.Handle(ctx, err, "failed to roll back related records of created risk")
	}
	if err := uc.repo.Risk().Delete(ctx, id); err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to roll back created risk", goerr.V(model.RiskIDKey, id)), "failed to roll back created risk")
	}
}

// ListDocuments returns the documents of an existing risk
func (uc *RiskUseCase) ListDocuments(ctx context.Context, riskID int64) ([]*model.Document, error) {
	if _, err := uc.repo.Risk().Get(ctx, riskID); err != nil {
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(model.RiskIDKey, riskID))
	}

	docs, err := uc.repo.Document().ListByRisk(ctx, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list documents", goerr.V(model.RiskIDKey, riskID))
	}
	return docs, nil
}

func (uc *RiskUseCase) GetPerson(ctx context.Context, id int64) (*model.Person, error) {
	p, err := uc.repo.Person().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get person", goerr.V("person_id", id))
	}
	return p, nil
}

func (uc *RiskUseCase) GetContext(ctx context.Context, id int64) (*model.Context, error) {
	c, err := uc.repo.Context().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get context", goerr.V("context_id", id))
	}
	return c, nil
}

func (uc *RiskUseCase) GetRiskObject(ctx context.Context, id int64) (*model.RiskObject, error) {
	obj, err := uc.repo.RiskObject().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk object", goerr.V("risk_object_id", id))
	}
	return obj, nil
}

// SeedDirectory stores the people and contexts the server resolves stubs against
func (uc *RiskUseCase) SeedDirectory(ctx context.Context, people []*model.Person, contexts []*model.Context) error {
	for _, p := range people {
		if err := uc.repo.Person().Put(ctx, p); err != nil {
			return goerr.Wrap(err, "failed to put person", goerr.V("person_id", p.ID))
		}
	}
	for _, c := range contexts {
		if err := uc.repo.Context().Put(ctx, c); err != nil {
			return goerr.Wrap(err, "failed to put context", goerr.V("context_id", c.ID))
		}
	}

	logging.From(ctx).Info("directory seeded", "people", len(people), "contexts", len(contexts))
	return nil
}
