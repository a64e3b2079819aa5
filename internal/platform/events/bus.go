// Package events is the in-process broadcast channel behind the dashboard's
// live-refresh stream. Publishers never block: a subscriber that stops
// draining loses events instead of stalling the writers.
package events

import (
	"fmt"
	"sync"
)

const (
	TypePayoutsUpdated  = "payouts-updated"
	TypeTradersUpdated  = "traders-updated"
	TypeSettingsUpdated = "settings-updated"
	TypeLimitsUpdated   = "limits-updated"
)

// Event is one change notification. Message carries optional context such as
// the source of a payout update.
type Event struct {
	Type    string  `json:"type"`
	Message *string `json:"message"`
}

func PayoutsUpdated(source string) Event {
	message := fmt.Sprintf("source=%s", source)
	return Event{Type: TypePayoutsUpdated, Message: &message}
}

func TradersUpdated() Event {
	return Event{Type: TypeTradersUpdated}
}

func SettingsUpdated() Event {
	return Event{Type: TypeSettingsUpdated}
}

func LimitsUpdated() Event {
	return Event{Type: TypeLimitsUpdated}
}

const subscriberBuffer = 64

// Bus fans events out to any number of live subscribers.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe returns a receive channel and a cancel function. Cancel is
// idempotent and closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber with room in its buffer and
// drops it for the rest.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount is exposed for tests and diagnostics.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
