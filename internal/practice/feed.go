package practice

import "sync"

// Feed fans snapshots out to subscribers. Each subscriber holds at most one
// pending snapshot; a newer one replaces it, so a slow reader only ever sees
// the latest state and never blocks the practice loop.
type Feed struct {
	mu   sync.Mutex
	subs map[chan Snapshot]struct{}
}

// NewFeed returns a Feed with no subscribers.
func NewFeed() *Feed {
	return &Feed{subs: make(map[chan Snapshot]struct{})}
}

// Subscribe registers a new subscriber. The returned cancel function
// unregisters it and closes the channel.
func (f *Feed) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, ch)
			f.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers s to every subscriber without blocking.
func (f *Feed) Publish(s Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for ch := range f.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		// Drop the stale pending snapshot and retry once.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

// Len returns the number of subscribers.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
