package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
)

type documentRepository struct {
	mu     sync.RWMutex
	docs   map[int64]*model.Document
	nextID int64
}

func newDocumentRepository() *documentRepository {
	return &documentRepository{
		docs:   make(map[int64]*model.Document),
		nextID: 1,
	}
}

func copyDocument(d *model.Document) *model.Document {
	c := *d
	return &c
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyDocument(doc)
	created.ID = r.nextID
	created.CreatedAt = time.Now().UTC()
	r.nextID++

	r.docs[created.ID] = created
	return copyDocument(created), nil
}

func (r *documentRepository) ListByRisk(ctx context.Context, riskID int64) ([]*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := []*model.Document{}
	for _, d := range r.docs {
		if d.RiskID == riskID {
			docs = append(docs, copyDocument(d))
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ID < docs[j].ID
	})

	return docs, nil
}

func (r *documentRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.docs[id]; !exists {
		return goerr.Wrap(ErrNotFound, "document not found", goerr.V("document_id", id))
	}
	delete(r.docs, id)
	return nil
}

func (r *documentRepository) DeleteByRisk(ctx context.Context, riskID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, d := range r.docs {
		if d.RiskID == riskID {
			delete(r.docs, id)
		}
	}
	return nil
}
