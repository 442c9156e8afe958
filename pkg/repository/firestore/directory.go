package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
)

type personDocument struct {
	ID    int64  `firestore:"id"`
	Name  string `firestore:"name"`
	Email string `firestore:"email"`
}

type personRepository struct {
	client *firestore.Client
	cols   *collections
}

func (r *personRepository) ref(id int64) *firestore.DocumentRef {
	return r.client.Collection(r.cols.name(CollectionPeople)).Doc(docID(id))
}

func (r *personRepository) Get(ctx context.Context, id int64) (*model.Person, error) {
	snap, err := r.ref(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "person not found", goerr.V("person_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get person", goerr.V("person_id", id))
	}

	var d personDocument
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal person", goerr.V("person_id", id))
	}
	return &model.Person{ID: d.ID, Name: d.Name, Email: d.Email}, nil
}

func (r *personRepository) Put(ctx context.Context, person *model.Person) error {
	if person.ID == 0 {
		return goerr.New("person ID is required")
	}

	d := &personDocument{ID: person.ID, Name: person.Name, Email: person.Email}
	if _, err := r.ref(person.ID).Set(ctx, d); err != nil {
		return goerr.Wrap(err, "failed to put person", goerr.V("person_id", person.ID))
	}
	return nil
}

type contextDocument struct {
	ID   int64  `firestore:"id"`
	Name string `firestore:"name"`
}

type contextRepository struct {
	client *firestore.Client
	cols   *collections
}

func (r *contextRepository) ref(id int64) *firestore.DocumentRef {
	return r.client.Collection(r.cols.name(CollectionContexts)).Doc(docID(id))
}

func (r *contextRepository) Get(ctx context.Context, id int64) (*model.Context, error) {
	snap, err := r.ref(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "context not found", goerr.V("context_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get context", goerr.V("context_id", id))
	}

	var d contextDocument
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal context", goerr.V("context_id", id))
	}
	return &model.Context{ID: d.ID, Name: d.Name}, nil
}

func (r *contextRepository) Put(ctx context.Context, c *model.Context) error {
	if c.ID == 0 {
		return goerr.New("context ID is required")
	}

	d := &contextDocument{ID: c.ID, Name: c.Name}
	if _, err := r.ref(c.ID).Set(ctx, d); err != nil {
		return goerr.Wrap(err, "failed to put context", goerr.V("context_id", c.ID))
	}
	return nil
}
