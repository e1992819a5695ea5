package snapshot

import "sync"

// Subscribe registers a listener for new ETags. The returned func unsubscribes
// and closes the channel; calling it more than once is safe.
func (h *Holder) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			close(ch)
			h.mu.Unlock()
		})
	}
	return ch, unsub
}

// Subscribers returns the number of active listeners.
func (h *Holder) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// publish notifies all listeners (non-blocking).
func (h *Holder) publish(etag string) {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- etag:
		default: // if client is slow, skip instead of blocking
		}
	}
	h.mu.Unlock()
}
