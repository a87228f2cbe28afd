package signal

import (
	"context"
	"sync"
	"time"

	"github.com/Panharith2006/electric-store-system/internal/logger"
	"go.uber.org/zap"
)

// EventType identifies which store family changed. The values double
// as the persisted signal key names, kept compatible with the keys the
// web frontend writes to localStorage so mixed deployments observe
// each other.
type EventType string

const (
	ProductsChanged   EventType = "products_updated_at"
	CategoriesChanged EventType = "categories_updated_at"
	StockChanged      EventType = "stock_updated_at"
)

// Event is a dirty flag, not a message: it carries no payload and is
// delivered at-least-once. Consumers react by refetching.
type Event struct {
	Type EventType
	At   time.Time
}

// Storage persists signal timestamps so sibling processes can observe
// them. Implemented by *cache.Cache.
type Storage interface {
	SetSignal(name string, at time.Time) error
	Signals() (map[string]time.Time, error)
}

// Bus fans change events out to in-process subscribers and mirrors
// them into shared storage for other processes. A nil Storage keeps
// the bus in-memory only.
type Bus struct {
	mu    sync.Mutex
	subs  map[int]func(Event)
	next  int
	store Storage
	seen  map[EventType]time.Time
}

func NewBus(store Storage) *Bus {
	return &Bus{
		subs:  make(map[int]func(Event)),
		store: store,
		seen:  make(map[EventType]time.Time),
	}
}

// Subscribe registers fn for every published event. Callbacks run on
// the publisher's goroutine and must not block. The returned cancel
// func removes the subscription.
func (b *Bus) Subscribe(fn func(Event)) (cancel func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish records and fans out a change event, and mirrors its
// timestamp to shared storage. Storage failures are logged, never
// fatal: the in-process notification already happened.
func (b *Bus) Publish(t EventType) {
	ev := Event{Type: t, At: time.Now()}

	b.mu.Lock()
	b.seen[t] = ev.At
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	if b.store != nil {
		if err := b.store.SetSignal(string(t), ev.At); err != nil {
			logger.L().Warn("failed to persist change signal",
				zap.String("signal", string(t)),
				zap.Error(err),
			)
		}
	}

	for _, fn := range fns {
		fn(ev)
	}
}

// Watch launches a goroutine that polls shared storage and emits
// events for signals written by other processes. Signals this bus
// published itself are not re-emitted. It returns immediately.
func (b *Bus) Watch(ctx context.Context, interval time.Duration) {
	if b.store == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.sweep()
			}
		}
	}()
}

func (b *Bus) sweep() {
	signals, err := b.store.Signals()
	if err != nil {
		logger.L().Warn("failed to read change signals", zap.Error(err))
		return
	}

	var pending []Event
	b.mu.Lock()
	for name, at := range signals {
		t := EventType(name)
		switch t {
		case ProductsChanged, CategoriesChanged, StockChanged:
		default:
			continue
		}
		if at.After(b.seen[t]) {
			b.seen[t] = at
			pending = append(pending, Event{Type: t, At: at})
		}
	}
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, ev := range pending {
		for _, fn := range fns {
			fn(ev)
		}
	}
}
