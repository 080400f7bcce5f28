package kbd

import "sync"

// eventBuffer is the single-slot mailbox between the dispatch step
// and readers. A publish overwrites any unread value; readers that
// care about every transition must take at least once per
// CheckInterval.
type eventBuffer struct {
	mu      sync.Mutex
	pending bool
	value   KeyMask
}

func (b *eventBuffer) publish(key KeyMask) {
	b.mu.Lock()
	b.pending = true
	b.value = key
	b.mu.Unlock()
}

func (b *eventBuffer) tryTake() (KeyMask, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.pending {
		return 0, false
	}
	b.pending = false
	return b.value, true
}
