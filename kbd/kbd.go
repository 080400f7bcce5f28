// package kbd implements the keypad event pipeline: raw hardware
// samples are debounced, optionally qualified for long presses and
// auto-repeated, then delivered as key events through a single-slot
// buffer. The pipeline runs one step per call to Poll, which the host
// invokes from its periodic timer context; Poll never blocks.
package kbd

import (
	"runtime"

	"keydeck.dev/tick"
)

// KeyMask is a set of depressed keys, one bit per physical key, plus
// the synthetic flags below.
type KeyMask uint16

const (
	// Repeat marks an event synthesized by the auto-repeat handler.
	// Repeat events do not trigger feedback.
	Repeat KeyMask = 1 << 15
	// Timeout is the sentinel returned by GetTimeout when the
	// deadline passes without a key event.
	Timeout KeyMask = 1 << 14
)

// Config holds the timing policy of the pipeline. All durations are
// in milliseconds.
type Config struct {
	CheckInterval tick.Duration // period the host should call Poll at
	DebounceTime  tick.Duration // stability required before a sample is accepted
	BeepTime      int           // feedback pulse length
	RepeatDelay   tick.Duration // hold time before the first repeat event
	RepeatRate    tick.Duration // initial repeat period
	RepeatMaxRate tick.Duration // fastest repeat period
	RepeatAccel   tick.Duration // repeat period decrease per event
	LongDelay     tick.Duration // hold time before a long press qualifies

	// RepeatMask selects the keys that auto-repeat while held.
	RepeatMask KeyMask
	// LongMask selects the keys that are reported only after a
	// sustained press. A zero mask disables long-press handling.
	LongMask KeyMask

	// Idle, if set, is called between buffer polls in Get and
	// GetTimeout. It defaults to runtime.Gosched.
	Idle func()
}

func DefaultConfig() Config {
	return Config{
		CheckInterval: 10,
		DebounceTime:  30,
		BeepTime:      5,
		RepeatDelay:   400,
		RepeatRate:    100,
		RepeatMaxRate: 20,
		RepeatAccel:   5,
		LongDelay:     1000,
	}
}

// A Device samples the keypad hardware. ReadKeys returns the keys
// currently depressed and must not block.
type Device interface {
	ReadKeys() KeyMask
}

// A Beeper emits a feedback pulse of the given length in
// milliseconds. Beep must not block; the pulse completes on its own.
// Devices that also implement Beeper get feedback on every
// non-repeat key event.
type Beeper interface {
	Beep(ms int)
}

// Pipeline owns all state of the event pipeline for one keypad.
type Pipeline struct {
	dev   Device
	beep  Beeper
	clock tick.Clock
	cfg   Config
	idle  func()

	chain chain
	buf   eventBuffer

	// settled is the last raw-chain output forwarded to the cooked
	// handlers. Touched only by Poll.
	settled KeyMask

	deb debounceState
	lng longPressState
	rpt repeatState
}

// New builds a pipeline with the built-in debounce, long-press and
// auto-repeat handlers installed on the raw chain and the buffer sink
// terminating the cooked chain. The long-press handler is installed
// only when cfg.LongMask is nonzero. If dev also implements Beeper it
// is used for key feedback.
//
// Poll must not be called before New returns, and never from more
// than one goroutine at a time.
func New(dev Device, clock tick.Clock, cfg Config) *Pipeline {
	p := &Pipeline{
		dev:   dev,
		clock: clock,
		cfg:   cfg,
		idle:  cfg.Idle,
	}
	if b, ok := dev.(Beeper); ok {
		p.beep = b
	}
	if p.idle == nil {
		p.idle = runtime.Gosched
	}
	p.AddHandler(&Handler{Priority: prioDebounce, Class: RawKeys, Func: p.debounce})
	if cfg.LongMask != 0 {
		p.AddHandler(&Handler{Priority: prioLongPress, Class: RawKeys, Func: p.longPress})
	}
	p.AddHandler(&Handler{Priority: prioRepeat, Class: RawKeys, Func: p.autoRepeat})
	p.AddHandler(&Handler{Priority: prioSink, Class: Cooked, Func: p.sink})
	return p
}

// Poll runs one dispatch step: it samples the device, folds the
// sample through the raw handlers and, if the result differs from the
// previous step's, folds it through the cooked handlers. The host
// timer service must call Poll every CheckInterval milliseconds and
// must never deliver two calls concurrently.
func (p *Pipeline) Poll() {
	key := p.dev.ReadKeys()
	p.chain.mu.Lock()
	defer p.chain.mu.Unlock()
	for _, h := range p.chain.raw {
		key = h.Func(key)
	}
	if key != p.settled {
		p.settled = key
		for _, h := range p.chain.cooked {
			key = h.Func(key)
		}
	}
}

// Peek returns the pending key event, if any, without blocking.
func (p *Pipeline) Peek() (KeyMask, bool) {
	return p.buf.tryTake()
}

// Get polls until a key event arrives. The pipeline must keep being
// polled from another goroutine for Get to make progress.
func (p *Pipeline) Get() KeyMask {
	for {
		if key, ok := p.buf.tryTake(); ok {
			return key
		}
		p.idle()
	}
}

// GetTimeout is like Get but gives up once d has elapsed on the
// pipeline clock, returning the Timeout sentinel.
func (p *Pipeline) GetTimeout(d tick.Duration) KeyMask {
	start := p.clock.Now()
	for {
		if key, ok := p.buf.tryTake(); ok {
			return key
		}
		if tick.Since(p.clock.Now(), start) >= d {
			return Timeout
		}
		p.idle()
	}
}
