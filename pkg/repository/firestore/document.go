package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type documentDocument struct {
	ID           int64     `firestore:"id"`
	RiskID       int64     `firestore:"risk_id"`
	Title        string    `firestore:"title"`
	Link         string    `firestore:"link"`
	DocumentType string    `firestore:"document_type"`
	CreatedAt    time.Time `firestore:"created_at"`
}

func (d *documentDocument) toModel() *model.Document {
	return &model.Document{
		ID:           d.ID,
		RiskID:       d.RiskID,
		Title:        d.Title,
		Link:         d.Link,
		DocumentType: types.DocumentType(d.DocumentType),
		CreatedAt:    d.CreatedAt,
	}
}

type documentRepository struct {
	client  *firestore.Client
	cols    *collections
	counter *counter
}

func (r *documentRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.cols.name(CollectionDocuments))
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	id, err := r.counter.next(ctx, CollectionDocuments)
	if err != nil {
		return nil, err
	}

	d := &documentDocument{
		ID:           id,
		RiskID:       doc.RiskID,
		Title:        doc.Title,
		Link:         doc.Link,
		DocumentType: doc.DocumentType.String(),
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := r.collection().Doc(docID(id)).Set(ctx, d); err != nil {
		return nil, goerr.Wrap(err, "failed to create document", goerr.V(model.RiskIDKey, doc.RiskID))
	}

	return d.toModel(), nil
}

func (r *documentRepository) ListByRisk(ctx context.Context, riskID int64) ([]*model.Document, error) {
	iter := r.collection().
		Where("risk_id", "==", riskID).
		OrderBy("id", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	docs := []*model.Document{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents", goerr.V(model.RiskIDKey, riskID))
		}

		var d documentDocument
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal document", goerr.V("doc", snap.Ref.ID))
		}
		docs = append(docs, d.toModel())
	}

	return docs, nil
}

func (r *documentRepository) Delete(ctx context.Context, id int64) error {
	ref := r.collection().Doc(docID(id))
	if _, err := ref.Get(ctx); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrNotFound, "document not found", goerr.V("document_id", id))
		}
		return goerr.Wrap(err, "failed to get document", goerr.V("document_id", id))
	}

	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete document", goerr.V("document_id", id))
	}
	return nil
}

func (r *documentRepository) DeleteByRisk(ctx context.Context, riskID int64) error {
	if err := deleteWhere(ctx, r.client, r.collection().Where("risk_id", "==", riskID)); err != nil {
		return goerr.Wrap(err, "failed to delete documents of risk", goerr.V(model.RiskIDKey, riskID))
	}
	return nil
}
