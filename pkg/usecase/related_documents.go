package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/utils/errutil"
)

// RenderFunc receives the refreshed documents of a risk
type RenderFunc func(ctx context.Context, riskID int64, docs []*model.Document)

// RelatedDocuments keeps the document listing of saved risks current by
// re-fetching it whenever a refreshRelatedDocuments event arrives.
type RelatedDocuments struct {
	api    interfaces.DocumentAPI
	render RenderFunc
	sub    interfaces.Subscription

	mu     sync.RWMutex
	latest map[int64][]*model.Document
}

// NewRelatedDocuments subscribes to the refresh event on bus. render may be nil.
func NewRelatedDocuments(bus interfaces.EventBus, api interfaces.DocumentAPI, render RenderFunc) *RelatedDocuments {
	d := &RelatedDocuments{
		api:    api,
		render: render,
		latest: make(map[int64][]*model.Document),
	}
	d.sub = bus.Subscribe(model.EventRefreshRelatedDocuments, d.handle)
	return d
}

func (d *RelatedDocuments) handle(ctx context.Context, ev model.Event) {
	if ev.Risk == nil || ev.Risk.IsNew() {
		return
	}

	if err := d.Refresh(ctx, ev.Risk.ID); err != nil {
		errutil.Handle(ctx, err, "failed to refresh related documents")
	}
}

// Refresh fetches the documents of riskID and hands them to the render callback
func (d *RelatedDocuments) Refresh(ctx context.Context, riskID int64) error {
	docs, err := d.api.ListDocuments(ctx, riskID)
	if err != nil {
		return goerr.Wrap(err, "failed to list documents", goerr.V(model.RiskIDKey, riskID))
	}

	d.mu.Lock()
	d.latest[riskID] = docs
	d.mu.Unlock()

	if d.render != nil {
		d.render(ctx, riskID, docs)
	}
	return nil
}

// Documents returns the last fetched documents of riskID
func (d *RelatedDocuments) Documents(riskID int64) []*model.Document {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]*model.Document(nil), d.latest[riskID]...)
}

// Close stops listening for refresh events
func (d *RelatedDocuments) Close() {
	d.sub.Unsubscribe()
}
