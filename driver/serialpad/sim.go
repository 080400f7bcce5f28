package serialpad

import (
	"io"

	"keydeck.dev/kbd"
)

// Simulator emulates the keypad MCU's side of the serial line for
// tests.
type Simulator struct {
	frames chan []byte
	rem    []byte
}

func NewSimulator() *Simulator {
	return &Simulator{
		frames: make(chan []byte, 16),
	}
}

// Send queues a key state frame.
func (s *Simulator) Send(key kbd.KeyMask) {
	s.frames <- frame(key)
}

// SendCorrupt queues a frame with a broken checksum.
func (s *Simulator) SendCorrupt(key kbd.KeyMask) {
	f := frame(key)
	f[3] ^= 0xff
	s.frames <- f
}

// SendNoise queues stray bytes between frames.
func (s *Simulator) SendNoise(b ...byte) {
	s.frames <- b
}

// Close ends the stream; the driver sees EOF.
func (s *Simulator) Close() error {
	close(s.frames)
	return nil
}

func (s *Simulator) Read(p []byte) (int, error) {
	for len(s.rem) == 0 {
		f, ok := <-s.frames
		if !ok {
			return 0, io.EOF
		}
		s.rem = f
	}
	n := copy(p, s.rem)
	s.rem = s.rem[n:]
	return n, nil
}

func frame(key kbd.KeyMask) []byte {
	lo, hi := byte(key), byte(key>>8)
	return []byte{frameHeader, lo, hi, frameHeader ^ lo ^ hi}
}
