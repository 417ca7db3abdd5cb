package identity

import (
	"sync"

	"github.com/dmitrijs2005/rentable/internal/client/models"
)

const subscriberBuffer = 16

// broadcaster fans auth events out to subscribers. Sends never block: a
// subscriber whose buffer is full misses the event.
type broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan models.AuthEvent
	closed bool
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan models.AuthEvent)}
}

func (b *broadcaster) subscribe() (<-chan models.AuthEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan models.AuthEvent, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// publish returns the number of subscribers that missed the event.
func (b *broadcaster) publish(ev models.AuthEvent) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	dropped := 0
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			dropped++
		}
	}
	return dropped
}

func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
