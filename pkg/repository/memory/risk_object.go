package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
)

type riskObjectRepository struct {
	mu      sync.RWMutex
	objects map[int64]*model.RiskObject
	nextID  int64
}

func newRiskObjectRepository() *riskObjectRepository {
	return &riskObjectRepository{
		objects: make(map[int64]*model.RiskObject),
		nextID:  1,
	}
}

func copyRiskObject(o *model.RiskObject) *model.RiskObject {
	c := *o
	if o.Object != nil {
		obj := *o.Object
		c.Object = &obj
	}
	return &c
}

func (r *riskObjectRepository) Create(ctx context.Context, obj *model.RiskObject) (*model.RiskObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyRiskObject(obj)
	created.ID = r.nextID
	r.nextID++

	r.objects[created.ID] = created
	return copyRiskObject(created), nil
}

func (r *riskObjectRepository) Get(ctx context.Context, id int64) (*model.RiskObject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	obj, exists := r.objects[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk object not found", goerr.V("risk_object_id", id))
	}
	return copyRiskObject(obj), nil
}

func (r *riskObjectRepository) ListByRisk(ctx context.Context, riskID int64) ([]*model.RiskObject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	objs := []*model.RiskObject{}
	for _, o := range r.objects {
		if o.RiskID == riskID {
			objs = append(objs, copyRiskObject(o))
		}
	}
	sort.Slice(objs, func(i, j int) bool {
		return objs[i].ID < objs[j].ID
	})
	return objs, nil
}

func (r *riskObjectRepository) DeleteByRisk(ctx context.Context, riskID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, o := range r.objects {
		if o.RiskID == riskID {
			delete(r.objects, id)
		}
	}
	return nil
}
