// Package events is an in-process publish/subscribe bus used to
// fan changes out to loosely coupled components.
package events

import (
	"sync"
	"time"
)

type Topic string

const (
	TopicStoreChanged   Topic = "store.changed"
	TopicToast          Topic = "toast"
	TopicTimer          Topic = "timer"
	TopicLapCreated     Topic = "lap.created"
	TopicLapUpdated     Topic = "lap.updated"
	TopicLapDeleted     Topic = "lap.deleted"
	TopicReminderDigest Topic = "reminder.digest"
)

type Event struct {
	Topic   Topic     `json:"topic"`
	UserID  string    `json:"user_id,omitempty"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

type Publisher interface {
	Publish(e Event)
}

type Subscriber interface {
	Subscribe(topics ...Topic) chan Event
	Unsubscribe(ch chan Event)
}

const subscriberBuffer = 64

// Bus delivers every published event to the subscribers of its topic.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan Event]map[Topic]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[chan Event]map[Topic]struct{})}
}

// Publish never blocks: a subscriber whose buffer is full misses the event.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch, topics := range b.subs {
		if len(topics) > 0 {
			if _, ok := topics[e.Topic]; !ok {
				continue
			}
		}
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe returns a buffered channel receiving events of the given
// topics, or of every topic when none are given.
func (b *Bus) Subscribe(topics ...Topic) chan Event {
	set := make(map[Topic]struct{}, len(topics))
	for _, t := range topics {
		set[t] = struct{}{}
	}

	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = set
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
// Unknown channels are ignored.
func (b *Bus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; !ok {
		return
	}
	delete(b.subs, ch)
	close(ch)
}
