package practice

import "sync"

// Event types pushed to session subscribers
const (
	EventTick      = "tick"
	EventSubmitted = "submitted"
	EventReady     = "ready"
	EventAdvanced  = "advanced"
	EventStopped   = "recording_stopped"
	EventEnded     = "ended"
)

// Event is one message on a session feed
type Event struct {
	Type          string `json:"type"`
	Remaining     *int   `json:"remaining,omitempty"`
	AutoSubmitted *bool  `json:"autoSubmitted,omitempty"`
	QuestionIndex *int   `json:"questionIndex,omitempty"`
}

func tickEvent(remainingSeconds int) Event {
	return Event{Type: EventTick, Remaining: &remainingSeconds}
}

// broadcaster fans events out to subscribers. Slow subscribers drop events.
type broadcaster struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	closed bool
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[chan Event]struct{})}
}

// subscribe returns an event channel and a cancel func. The channel is
// closed on cancel or when the broadcaster closes.
func (b *broadcaster) subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 16)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
	}
}

func (b *broadcaster) publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
		delete(b.subs, ch)
	}
}
