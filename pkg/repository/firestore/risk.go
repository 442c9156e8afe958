package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type riskDocument struct {
	ID                    int64                        `firestore:"id"`
	Title                 string                       `firestore:"title"`
	TitleKey              string                       `firestore:"title_key"`
	Description           string                       `firestore:"description"`
	Slug                  string                       `firestore:"slug"`
	Notes                 string                       `firestore:"notes"`
	Status                string                       `firestore:"status"`
	Contact               *model.Stub                  `firestore:"contact"`
	SecondaryContact      *model.Stub                  `firestore:"secondary_contact"`
	Owners                []*model.Stub                `firestore:"owners"`
	ModifiedBy            *model.Stub                  `firestore:"modified_by"`
	Context               *model.Stub                  `firestore:"context"`
	Objects               []*model.Stub                `firestore:"objects"`
	RiskObjects           []*model.Stub                `firestore:"risk_objects"`
	ReferenceURL          string                       `firestore:"reference_url"`
	CustomAttributeValues []model.CustomAttributeValue `firestore:"custom_attribute_values"`
	CreatedAt             time.Time                    `firestore:"created_at"`
	UpdatedAt             time.Time                    `firestore:"updated_at"`
}

func titleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

func toRiskDocument(r *model.Risk) *riskDocument {
	c := r.Copy()
	return &riskDocument{
		ID:                    c.ID,
		Title:                 c.Title,
		TitleKey:              titleKey(c.Title),
		Description:           c.Description,
		Slug:                  c.Slug,
		Notes:                 c.Notes,
		Status:                c.Status.String(),
		Contact:               c.Contact,
		SecondaryContact:      c.SecondaryContact,
		Owners:                c.Owners,
		ModifiedBy:            c.ModifiedBy,
		Context:               c.Context,
		Objects:               c.Objects,
		RiskObjects:           c.RiskObjects,
		ReferenceURL:          c.ReferenceURL,
		CustomAttributeValues: c.CustomAttributeValues,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
}

func (d *riskDocument) toModel() *model.Risk {
	owners := d.Owners
	if owners == nil {
		owners = []*model.Stub{}
	}
	return &model.Risk{
		ID:                    d.ID,
		Title:                 d.Title,
		Description:           d.Description,
		Slug:                  d.Slug,
		Notes:                 d.Notes,
		Status:                types.RiskStatus(d.Status),
		Contact:               d.Contact,
		SecondaryContact:      d.SecondaryContact,
		Owners:                owners,
		ModifiedBy:            d.ModifiedBy,
		Context:               d.Context,
		Objects:               d.Objects,
		RiskObjects:           d.RiskObjects,
		ReferenceURL:          d.ReferenceURL,
		CustomAttributeValues: d.CustomAttributeValues,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
}

type riskRepository struct {
	client  *firestore.Client
	cols    *collections
	counter *counter
}

func (r *riskRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.cols.name(CollectionRisks))
}

func (r *riskRepository) Create(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	id, err := r.counter.next(ctx, CollectionRisks)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := toRiskDocument(risk)
	doc.ID = id
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.collection().Doc(docID(id)).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create risk")
	}

	return doc.toModel(), nil
}

func (r *riskRepository) get(ctx context.Context, id int64) (*riskDocument, error) {
	snap, err := r.collection().Doc(docID(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V(model.RiskIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(model.RiskIDKey, id))
	}

	var doc riskDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal risk", goerr.V(model.RiskIDKey, id))
	}
	return &doc, nil
}

func (r *riskRepository) Get(ctx context.Context, id int64) (*model.Risk, error) {
	doc, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *riskRepository) list(ctx context.Context, query firestore.Query) ([]*model.Risk, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	risks := []*model.Risk{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risks")
		}

		var doc riskDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal risk", goerr.V("doc", snap.Ref.ID))
		}
		risks = append(risks, doc.toModel())
	}

	return risks, nil
}

func (r *riskRepository) List(ctx context.Context) ([]*model.Risk, error) {
	return r.list(ctx, r.collection().OrderBy("id", firestore.Asc))
}

func (r *riskRepository) FindByTitle(ctx context.Context, title string) ([]*model.Risk, error) {
	return r.list(ctx, r.collection().Where("title_key", "==", titleKey(title)))
}

func (r *riskRepository) Update(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	existing, err := r.get(ctx, risk.ID)
	if err != nil {
		return nil, err
	}

	doc := toRiskDocument(risk)
	doc.CreatedAt = existing.CreatedAt
	doc.UpdatedAt = time.Now().UTC()

	if _, err := r.collection().Doc(docID(risk.ID)).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to update risk", goerr.V(model.RiskIDKey, risk.ID))
	}

	return doc.toModel(), nil
}

func (r *riskRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.get(ctx, id); err != nil {
		return err
	}

	if _, err := r.collection().Doc(docID(id)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete risk", goerr.V(model.RiskIDKey, id))
	}

	return nil
}
