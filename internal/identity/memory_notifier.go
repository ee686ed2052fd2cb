package identity

import (
	"context"
	"sync"
)

// MemoryNotifier delivers events inside one process. It backs single-node
// development setups and tests.
type MemoryNotifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan Event
}

// NewMemoryNotifier creates a new MemoryNotifier.
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{subs: make(map[string]map[int]chan Event)}
}

// Publish delivers ev to current subscribers of its user. Subscribers that
// are not keeping up miss the event.
func (n *MemoryNotifier) Publish(ctx context.Context, ev Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs[ev.UserID] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

// Subscribe registers an observer for userID.
func (n *MemoryNotifier) Subscribe(ctx context.Context, userID string) (<-chan Event, func()) {
	ch := make(chan Event, 4)

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	if n.subs[userID] == nil {
		n.subs[userID] = make(map[int]chan Event)
	}
	n.subs[userID][id] = ch
	n.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs[userID], id)
			if len(n.subs[userID]) == 0 {
				delete(n.subs, userID)
			}
			n.mu.Unlock()
			close(ch)
		})
	}

	go func() {
		<-ctx.Done()
		stop()
	}()

	return ch, stop
}

// Subscribers returns how many observers are registered for userID.
func (n *MemoryNotifier) Subscribers(userID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[userID])
}
