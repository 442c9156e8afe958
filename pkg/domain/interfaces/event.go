package interfaces

import (
	"context"

	"github.com/secmon-lab/grc-risk/pkg/domain/model"
)

// Subscription is returned by EventBus.Subscribe
type Subscription interface {
	// Unsubscribe stops delivery. Calling it more than once is a no-op
	Unsubscribe()
}

// EventBus delivers model events to subscribers
type EventBus interface {
	Subscribe(name model.EventName, handler model.EventHandler) Subscription
	Emit(ctx context.Context, ev model.Event)
}
