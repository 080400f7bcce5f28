package kbd

import "keydeck.dev/tick"

// The built-in handlers below run only from Poll, under the chain
// lock, so their state needs no further synchronization.

type debounceState struct {
	last     KeyMask   // most recent raw sample
	since    tick.Tick // when last was first seen
	accepted KeyMask   // sample that survived the debounce window
}

// debounce ignores key transitions until the raw sample has been
// stable for DebounceTime, filtering mechanical contact bounce.
func (p *Pipeline) debounce(key KeyMask) KeyMask {
	now := p.clock.Now()
	d := &p.deb
	if key != d.last {
		d.last = key
		d.since = now
	} else if d.accepted != d.last && tick.Since(now, d.since) >= p.cfg.DebounceTime {
		d.accepted = d.last
		d.since = now
	}
	return d.accepted
}

type longPressState struct {
	deadline tick.Tick
}

// longPress holds back the keys in LongMask until they have been
// depressed for LongDelay. While no eligible key is down the deadline
// is pushed ahead; once one is down the deadline freezes and the keys
// become visible only when it passes. A qualified event carries only
// the eligible bits.
func (p *Pipeline) longPress(key KeyMask) KeyMask {
	now := p.clock.Now()
	if key&p.cfg.LongMask != 0 {
		if tick.Since(now, p.lng.deadline) >= 0 {
			key &= p.cfg.LongMask
		} else {
			key &^= p.cfg.LongMask
		}
	} else {
		p.lng.deadline = now.Add(p.cfg.LongDelay)
	}
	return key
}

type repeatPhase int

const (
	rptIdle repeatPhase = iota
	rptDelaying
	rptRepeating
)

type repeatState struct {
	phase repeatPhase
	at    tick.Tick     // time of the last synthetic event
	rate  tick.Duration // current repeat period
}

// autoRepeat synthesizes repeat events while a key in RepeatMask is
// held: one event after RepeatDelay, then one per rate period, the
// period shrinking by RepeatAccel per event down to RepeatMaxRate.
// Between events the held keys are suppressed so the cooked chain
// sees each synthetic event as a fresh transition.
func (p *Pipeline) autoRepeat(key KeyMask) KeyMask {
	now := p.clock.Now()
	r := &p.rpt
	switch r.phase {
	case rptIdle:
		if key&p.cfg.RepeatMask != 0 {
			r.at = now
			r.phase = rptDelaying
		}

	case rptDelaying:
		if key&p.cfg.RepeatMask == 0 {
			r.phase = rptIdle
			break
		}
		if tick.Since(now, r.at) > p.cfg.RepeatDelay {
			key = key&p.cfg.RepeatMask | Repeat
			r.at = now
			r.rate = p.cfg.RepeatRate
			r.phase = rptRepeating
		} else {
			key = 0
		}

	case rptRepeating:
		if key&p.cfg.RepeatMask == 0 {
			r.phase = rptIdle
			break
		}
		if tick.Since(now, r.at) > r.rate {
			key = key&p.cfg.RepeatMask | Repeat
			r.at = now
			if next := r.rate - p.cfg.RepeatAccel; next >= p.cfg.RepeatMaxRate {
				r.rate = next
			} else {
				r.rate = p.cfg.RepeatMaxRate
			}
		} else {
			key = 0
		}
	}
	return key
}

// sink terminates the cooked chain: it deposits the event in the
// buffer and pulses feedback, except for synthetic repeats. It eats
// the key so nothing propagates past it.
func (p *Pipeline) sink(key KeyMask) KeyMask {
	if key != 0 {
		p.buf.publish(key)
		if key&Repeat == 0 && p.beep != nil {
			p.beep.Beep(p.cfg.BeepTime)
		}
	}
	return 0
}
