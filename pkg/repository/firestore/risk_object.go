package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type riskObjectDocument struct {
	ID     int64       `firestore:"id"`
	RiskID int64       `firestore:"risk_id"`
	Object *model.Stub `firestore:"object"`
}

func (d *riskObjectDocument) toModel() *model.RiskObject {
	return &model.RiskObject{
		ID:     d.ID,
		RiskID: d.RiskID,
		Object: d.Object,
	}
}

type riskObjectRepository struct {
	client  *firestore.Client
	cols    *collections
	counter *counter
}

func (r *riskObjectRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.cols.name(CollectionRiskObjects))
}

func (r *riskObjectRepository) Create(ctx context.Context, obj *model.RiskObject) (*model.RiskObject, error) {
	id, err := r.counter.next(ctx, CollectionRiskObjects)
	if err != nil {
		return nil, err
	}

	d := &riskObjectDocument{ID: id, RiskID: obj.RiskID}
	if obj.Object != nil {
		stub := *obj.Object
		d.Object = &stub
	}
	if _, err := r.collection().Doc(docID(id)).Set(ctx, d); err != nil {
		return nil, goerr.Wrap(err, "failed to create risk object", goerr.V(model.RiskIDKey, obj.RiskID))
	}
	return d.toModel(), nil
}

func (r *riskObjectRepository) Get(ctx context.Context, id int64) (*model.RiskObject, error) {
	snap, err := r.collection().Doc(docID(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "risk object not found", goerr.V("risk_object_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get risk object", goerr.V("risk_object_id", id))
	}

	var d riskObjectDocument
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal risk object", goerr.V("risk_object_id", id))
	}
	return d.toModel(), nil
}

func (r *riskObjectRepository) ListByRisk(ctx context.Context, riskID int64) ([]*model.RiskObject, error) {
	iter := r.collection().
		Where("risk_id", "==", riskID).
		OrderBy("id", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	objs := []*model.RiskObject{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risk objects", goerr.V(model.RiskIDKey, riskID))
		}

		var d riskObjectDocument
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal risk object", goerr.V("doc", snap.Ref.ID))
		}
		objs = append(objs, d.toModel())
	}
	return objs, nil
}

func (r *riskObjectRepository) DeleteByRisk(ctx context.Context, riskID int64) error {
	if err := deleteWhere(ctx, r.client, r.collection().Where("risk_id", "==", riskID)); err != nil {
		return goerr.Wrap(err, "failed to delete risk objects", goerr.V(model.RiskIDKey, riskID))
	}
	return nil
}
