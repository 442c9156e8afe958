package event

import (
	"context"
	"sync"

	"github.com/secmon-lab/grc-risk/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/utils/logging"
)

// Bus is an in-process typed event bus. Handlers run synchronously, in
// subscription order, on the emitting goroutine. A panicking handler is
// logged and does not prevent delivery to the rest.
type Bus struct {
	mu     sync.RWMutex
	subs   map[model.EventName][]*subscription
	nextID uint64
}

var _ interfaces.EventBus = &Bus{}

type subscription struct {
	bus     *Bus
	id      uint64
	name    model.EventName
	handler model.EventHandler
	once    sync.Once
}

// New creates an empty Bus
func New() *Bus {
	return &Bus{
		subs: make(map[model.EventName][]*subscription),
	}
}

// Subscribe registers handler for events named name
func (b *Bus) Subscribe(name model.EventName, handler model.EventHandler) interfaces.Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscription{
		bus:     b,
		id:      b.nextID,
		name:    name,
		handler: handler,
	}
	b.subs[name] = append(b.subs[name], sub)
	return sub
}

// Emit delivers ev to every current subscriber of ev.Name
func (b *Bus) Emit(ctx context.Context, ev model.Event) {
	b.mu.RLock()
	subs := make([]*subscription, len(b.subs[ev.Name]))
	copy(subs, b.subs[ev.Name])
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.deliver(ctx, ev)
	}
}

// Len returns the number of subscribers of name
func (b *Bus) Len(name model.EventName) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}

func (s *subscription) deliver(ctx context.Context, ev model.Event) {
	defer func() {
		if r := recover(); r != nil {
			logging.From(ctx).Error("panic in event handler",
				"event", ev.Name,
				"panic", r,
			)
		}
	}()
	s.handler(ctx, ev)
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.remove(s)
	})
}

func (b *Bus) remove(target *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[target.name]
	for i, sub := range subs {
		if sub.id == target.id {
			b.subs[target.name] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[target.name]) == 0 {
		delete(b.subs, target.name)
	}
}
