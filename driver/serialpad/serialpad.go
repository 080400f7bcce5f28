// package serialpad implements a frontend for keypads wired to a
// helper MCU that streams key state over a serial line. The MCU sends
// a 4-byte frame whenever the key state changes and at least once per
// second:
//
//	0xa5, mask low byte, mask high byte, xor checksum of the first 3
//
// The driver keeps only the newest valid mask; sampling is
// non-blocking, matching the pipeline's last-sample-wins model.
package serialpad

import (
	"bufio"
	"io"
	"sync"

	"keydeck.dev/kbd"
)

const (
	frameHeader = 0xa5
	frameSize   = 4
)

// Pad tracks the most recent key state reported by the MCU.
type Pad struct {
	mu    sync.Mutex
	key   kbd.KeyMask
	drops int
	err   error
}

// New starts reading frames from port. Reading stops at the first
// read error; Err reports it.
func New(port io.Reader) *Pad {
	p := new(Pad)
	go p.run(port)
	return p
}

// ReadKeys returns the newest key state without blocking.
func (p *Pad) ReadKeys() kbd.KeyMask {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.key
}

// Drops reports the number of bytes skipped while resynchronizing
// after corrupt frames.
func (p *Pad) Drops() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.drops
}

// Err reports the read error that stopped the driver, if any.
func (p *Pad) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Pad) run(port io.Reader) {
	r := bufio.NewReaderSize(port, 4*frameSize)
	var frame [frameSize]byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			p.fail(err)
			return
		}
		if b != frameHeader {
			p.drop(1)
			continue
		}
		frame[0] = b
		if _, err := io.ReadFull(r, frame[1:]); err != nil {
			p.fail(err)
			return
		}
		if frame[0]^frame[1]^frame[2]^frame[3] != 0 {
			// Bad checksum; resync on the next header byte.
			p.drop(frameSize)
			continue
		}
		key := kbd.KeyMask(frame[1]) | kbd.KeyMask(frame[2])<<8
		// The synthetic flag bits belong to the pipeline.
		key &^= kbd.Repeat | kbd.Timeout
		p.mu.Lock()
		p.key = key
		p.mu.Unlock()
	}
}

func (p *Pad) drop(n int) {
	p.mu.Lock()
	p.drops += n
	p.mu.Unlock()
}

func (p *Pad) fail(err error) {
	p.mu.Lock()
	p.err = err
	p.key = 0
	p.mu.Unlock()
}
