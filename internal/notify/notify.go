// Package notify implements the change signal shared between the tracker and
// its subscribers. Notifications carry no payload; subscribers wake up and
// pull fresh state from the registry. Signals coalesce, so a slow subscriber
// sees at least one wakeup for any burst of changes.
package notify

import "sync"

// Notifier fans out change signals to subscribers.
type Notifier struct {
	mu      sync.Mutex
	version uint64
	nextID  int
	subs    map[int]chan struct{}
}

// New creates an empty Notifier.
func New() *Notifier {
	return &Notifier{subs: make(map[int]chan struct{})}
}

// Notify bumps the version and signals every subscriber. The send is
// non-blocking: a subscriber that has not drained its channel keeps the one
// pending signal.
func (n *Notifier) Notify() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.version++
	for _, ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Version returns the current change counter. It only ever increases.
func (n *Notifier) Version() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.version
}

// Subscribe registers a new subscriber. The returned channel receives a
// signal after each change; the cancel func unregisters the subscriber and
// must be called to release it.
func (n *Notifier) Subscribe() (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan struct{}, 1)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
	return ch, cancel
}
