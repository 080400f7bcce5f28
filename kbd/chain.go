package kbd

import (
	"slices"
	"sync"
)

// Class selects which chain a handler runs on.
type Class int

const (
	// RawKeys handlers see every hardware sample, once per Poll.
	RawKeys Class = iota
	// Cooked handlers see only settled keys, after the raw chain
	// output changed.
	Cooked
)

// Built-in handler priorities. User handlers slot in between or
// around these.
const (
	prioDebounce  = 100
	prioLongPress = 90
	prioRepeat    = 80
	prioSink      = -128
)

// A Handler transforms the key mask as it moves through a chain.
// Func receives the previous stage's output and returns the next
// stage's input. Handlers run with the chain lock held and must not
// add or remove handlers, poll, or block.
type Handler struct {
	Priority int8
	Class    Class
	Func     func(KeyMask) KeyMask
}

// chain holds the two handler sequences, each ordered by
// non-increasing priority. The mutex covers mutation and traversal;
// Poll holds it for the whole dispatch step.
type chain struct {
	mu     sync.Mutex
	raw    []*Handler
	cooked []*Handler
}

// AddHandler registers h on the chain selected by h.Class. Among
// handlers of equal priority, earlier registrations run first. Adding
// a handler that is already registered is a caller error and leaves
// the chain undefined.
func (p *Pipeline) AddHandler(h *Handler) {
	p.chain.mu.Lock()
	defer p.chain.mu.Unlock()
	list := p.chain.list(h.Class)
	i := 0
	for i < len(*list) && (*list)[i].Priority >= h.Priority {
		i++
	}
	*list = slices.Insert(*list, i, h)
}

// RemoveHandler unregisters h. The handler must currently be
// registered; callers own their handlers and must remove them before
// discarding them.
func (p *Pipeline) RemoveHandler(h *Handler) {
	p.chain.mu.Lock()
	defer p.chain.mu.Unlock()
	list := p.chain.list(h.Class)
	for i, n := range *list {
		if n == h {
			*list = slices.Delete(*list, i, i+1)
			return
		}
	}
}

func (c *chain) list(class Class) *[]*Handler {
	if class == RawKeys {
		return &c.raw
	}
	return &c.cooked
}
