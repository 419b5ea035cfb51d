// Package realtime tracks how many dashboard clients are connected and
// pushes the count to every one of them whenever it changes.
package realtime

import (
	"sync"
)

// Subscription is one connected client. C yields the latest online count;
// a slow reader only ever sees the newest value.
type Subscription struct {
	C  <-chan int
	ch chan int
}

type Hub struct {
	mu        sync.Mutex
	count     int
	listeners map[*Subscription]struct{}
	onChange  []func(int)
}

func NewHub() *Hub {
	return &Hub{listeners: make(map[*Subscription]struct{})}
}

// OnChange registers fn to run after every count change, under the hub lock.
func (h *Hub) OnChange(fn func(int)) {
	h.mu.Lock()
	h.onChange = append(h.onChange, fn)
	h.mu.Unlock()
}

// Join counts a new client and broadcasts the new total, including to the
// joining client.
func (h *Hub) Join() *Subscription {
	ch := make(chan int, 1)
	sub := &Subscription{C: ch, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners[sub] = struct{}{}
	h.count++
	h.broadcast()
	return sub
}

// Leave uncounts sub. Leaving twice is a no-op.
func (h *Hub) Leave(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.listeners[sub]; !ok {
		return
	}
	delete(h.listeners, sub)
	h.count--
	h.broadcast()
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// broadcast must be called with mu held; it is the only sender on every
// listener channel, so drain-then-send never blocks.
func (h *Hub) broadcast() {
	n := h.count
	for sub := range h.listeners {
		select {
		case sub.ch <- n:
		default:
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- n
		}
	}
	for _, fn := range h.onChange {
		fn(n)
	}
}
