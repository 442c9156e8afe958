package event_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/service/event"
)

func TestBus(t *testing.T) {
	t.Run("delivers to subscribers in order", func(t *testing.T) {
		bus := event.New()
		var got []string

		bus.Subscribe(model.EventRefreshRelatedDocuments, func(ctx context.Context, ev model.Event) {
			got = append(got, "first:"+ev.Risk.Title)
		})
		bus.Subscribe(model.EventRefreshRelatedDocuments, func(ctx context.Context, ev model.Event) {
			got = append(got, "second:"+ev.Risk.Title)
		})
		bus.Subscribe("other", func(ctx context.Context, ev model.Event) {
			got = append(got, "other")
		})

		bus.Emit(context.Background(), model.Event{
			Name: model.EventRefreshRelatedDocuments,
			Risk: &model.Risk{Title: "Data breach"},
		})

		gt.V(t, got).Equal([]string{"first:Data breach", "second:Data breach"})
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		bus := event.New()
		count := 0

		sub := bus.Subscribe(model.EventRefreshRelatedDocuments, func(ctx context.Context, ev model.Event) {
			count++
		})
		kept := bus.Subscribe(model.EventRefreshRelatedDocuments, func(ctx context.Context, ev model.Event) {
			count += 10
		})

		ev := model.Event{Name: model.EventRefreshRelatedDocuments}
		bus.Emit(context.Background(), ev)
		gt.N(t, count).Equal(11)

		sub.Unsubscribe()
		sub.Unsubscribe()
		gt.N(t, bus.Len(model.EventRefreshRelatedDocuments)).Equal(1)

		bus.Emit(context.Background(), ev)
		gt.N(t, count).Equal(21)

		kept.Unsubscribe()
		gt.N(t, bus.Len(model.EventRefreshRelatedDocuments)).Equal(0)
		bus.Emit(context.Background(), ev)
		gt.N(t, count).Equal(21)
	})

	t.Run("panicking handler does not block others", func(t *testing.T) {
		bus := event.New()
		called := false

		bus.Subscribe(model.EventRefreshRelatedDocuments, func(ctx context.Context, ev model.Event) {
			panic("boom")
		})
		bus.Subscribe(model.EventRefreshRelatedDocuments, func(ctx context.Context, ev model.Event) {
			called = true
		})

		bus.Emit(context.Background(), model.Event{Name: model.EventRefreshRelatedDocuments})
		gt.B(t, called).True()
	})

	t.Run("handler may unsubscribe itself during delivery", func(t *testing.T) {
		bus := event.New()
		count := 0

		var sub interface{ Unsubscribe() }
		sub = bus.Subscribe(model.EventRefreshRelatedDocuments, func(ctx context.Context, ev model.Event) {
			count++
			sub.Unsubscribe()
		})

		ev := model.Event{Name: model.EventRefreshRelatedDocuments}
		bus.Emit(context.Background(), ev)
		bus.Emit(context.Background(), ev)
		gt.N(t, count).Equal(1)
	})
}
