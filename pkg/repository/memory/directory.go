package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
)

type personRepository struct {
	mu     sync.RWMutex
	people map[int64]*model.Person
}

func newPersonRepository() *personRepository {
	return &personRepository{people: make(map[int64]*model.Person)}
}

func (r *personRepository) Get(ctx context.Context, id int64) (*model.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.people[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "person not found", goerr.V("person_id", id))
	}
	c := *p
	return &c, nil
}

func (r *personRepository) Put(ctx context.Context, person *model.Person) error {
	if person.ID == 0 {
		return goerr.New("person ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c := *person
	r.people[c.ID] = &c
	return nil
}

type contextRepository struct {
	mu       sync.RWMutex
	contexts map[int64]*model.Context
}

func newContextRepository() *contextRepository {
	return &contextRepository{contexts: make(map[int64]*model.Context)}
}

func (r *contextRepository) Get(ctx context.Context, id int64) (*model.Context, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.contexts[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "context not found", goerr.V("context_id", id))
	}
	cp := *c
	return &cp, nil
}

func (r *contextRepository) Put(ctx context.Context, c *model.Context) error {
	if c.ID == 0 {
		return goerr.New("context ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *c
	r.contexts[cp.ID] = &cp
	return nil
}
