package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
)

// ErrNotFound is returned, wrapped, when a document does not exist
var ErrNotFound = model.ErrNotFound

type Firestore struct {
	client     *firestore.Client
	prefix     *collections
	risk       *riskRepository
	riskObject *riskObjectRepository
	document   *documentRepository
	person     *personRepository
	context    *contextRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes every collection name, e.g. for test isolation
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.prefix.prefix = prefix
	}
}

// New connects to databaseID of projectID. An empty databaseID selects the
// default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	cols := &collections{}
	counter := &counter{client: client, cols: cols}
	f := &Firestore{
		client:     client,
		prefix:     cols,
		risk:       &riskRepository{client: client, cols: cols, counter: counter},
		riskObject: &riskObjectRepository{client: client, cols: cols, counter: counter},
		document:   &documentRepository{client: client, cols: cols, counter: counter},
		person:     &personRepository{client: client, cols: cols},
		context:    &contextRepository{client: client, cols: cols},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Risk() interfaces.RiskRepository {
	return f.risk
}

func (f *Firestore) RiskObject() interfaces.RiskObjectRepository {
	return f.riskObject
}

func (f *Firestore) Document() interfaces.DocumentRepository {
	return f.document
}

func (f *Firestore) Person() interfaces.PersonRepository {
	return f.person
}

func (f *Firestore) Context() interfaces.ContextRepository {
	return f.context
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
