package api

import "sync"

// changeBroker fans mirror change notifications out to the active SSE
// connections. Each subscriber gets a buffered channel of one so a slow
// connection coalesces bursts instead of blocking the notifier.
type changeBroker struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newChangeBroker() *changeBroker {
	return &changeBroker{subs: make(map[chan struct{}]struct{})}
}

func (b *changeBroker) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *changeBroker) unsubscribe(ch chan struct{}) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

func (b *changeBroker) notify() {
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	b.mu.Unlock()
}

func (b *changeBroker) subscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
