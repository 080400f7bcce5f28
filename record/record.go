// package record captures and replays key event sessions, for
// diagnosing keypad hardware in the field.
package record

import (
	"fmt"
	"io"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"keydeck.dev/kbd"
	"keydeck.dev/tick"
)

// Event is one settled key transition and the tick it was observed
// at. A zero Key records a release.
type Event struct {
	At  tick.Tick   `cbor:"1,keyasint"`
	Key kbd.KeyMask `cbor:"2,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	encMode = em
	dm, err := cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	decMode = dm
}

func Encode(w io.Writer, events []Event) error {
	if err := encMode.NewEncoder(w).Encode(events); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return nil
}

func Decode(r io.Reader) ([]Event, error) {
	var events []Event
	if err := decMode.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	return events, nil
}

// Recorder collects the settled transitions passing through a cooked
// chain, including releases the buffer sink never reports.
type Recorder struct {
	clock tick.Clock

	mu     sync.Mutex
	events []Event
}

func NewRecorder(clock tick.Clock) *Recorder {
	return &Recorder{clock: clock}
}

// Handler returns a cooked handler observing the chain at the given
// priority. Use a priority above the default sink's so every settled
// key is still seen.
func (r *Recorder) Handler(priority int8) *kbd.Handler {
	return &kbd.Handler{Priority: priority, Class: kbd.Cooked, Func: r.observe}
}

func (r *Recorder) observe(key kbd.KeyMask) kbd.KeyMask {
	r.mu.Lock()
	r.events = append(r.events, Event{At: r.clock.Now(), Key: key})
	r.mu.Unlock()
	return key
}

// Events returns a snapshot of the session so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]Event, len(r.events))
	copy(events, r.events)
	return events
}

// Replayer plays a recorded session back as a keypad device: ReadKeys
// holds each event's key mask until the next event's tick is reached,
// reconstructing the recorded key timeline. Timestamps are rebased to
// the clock's value at the first ReadKeys call.
type Replayer struct {
	clock  tick.Clock
	events []Event

	mu      sync.Mutex
	started bool
	offset  tick.Duration
	idx     int
	cur     kbd.KeyMask
}

func NewReplayer(clock tick.Clock, events []Event) *Replayer {
	return &Replayer{clock: clock, events: events}
}

func (r *Replayer) ReadKeys() kbd.KeyMask {
	now := r.clock.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started && len(r.events) > 0 {
		r.started = true
		r.offset = tick.Since(now, r.events[0].At)
	}
	for r.idx < len(r.events) {
		due := r.events[r.idx].At.Add(r.offset)
		if tick.Since(now, due) < 0 {
			break
		}
		r.cur = r.events[r.idx].Key &^ (kbd.Repeat | kbd.Timeout)
		r.idx++
	}
	return r.cur
}

// Done reports whether the whole session has been replayed.
func (r *Replayer) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idx == len(r.events)
}
