// package buzzer drives a piezo buzzer on a GPIO pin for key
// feedback pulses.
package buzzer

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

type Buzzer struct {
	pin gpio.PinOut

	mu  sync.Mutex
	gen int
	on  bool
}

// Open configures the named pin as a low output.
func Open(pin string) (*Buzzer, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	p := gpioreg.ByName(pin)
	if p == nil {
		return nil, fmt.Errorf("buzzer: unknown pin %q", pin)
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("buzzer: %w", err)
	}
	return &Buzzer{pin: p}, nil
}

// Beep pulses the buzzer for ms milliseconds and returns immediately.
// A beep issued while a pulse is still sounding supersedes it; the
// pin goes low when the newest pulse ends. Output is best effort, pin
// errors are ignored.
func (b *Buzzer) Beep(ms int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	gen := b.gen
	if !b.on {
		b.on = true
		b.pin.Out(gpio.High)
	}
	time.AfterFunc(time.Duration(ms)*time.Millisecond, func() {
		b.silence(gen)
	})
}

func (b *Buzzer) silence(gen int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		// A newer beep owns the pin now.
		return
	}
	b.on = false
	b.pin.Out(gpio.Low)
}
