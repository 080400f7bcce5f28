// package gpiopad implements a keypad sampler for keys wired directly
// to GPIO pins, such as the buttons on the Waveshare HATs.
package gpiopad

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"keydeck.dev/kbd"
)

// Pad samples a set of GPIO pins as a key mask.
type Pad struct {
	pins []gpio.PinIn
}

// maxKeys leaves the top key mask bits free for synthetic flags.
const maxKeys = 14

// Open configures the named pins as pulled-up inputs. Pin i maps to
// key bit i; buttons are expected to pull the pin low when pressed.
func Open(pins []string) (*Pad, error) {
	if len(pins) > maxKeys {
		return nil, fmt.Errorf("gpiopad: %d keys, at most %d supported", len(pins), maxKeys)
	}
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	p := new(Pad)
	for _, name := range pins {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, fmt.Errorf("gpiopad: unknown pin %q", name)
		}
		if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("gpiopad: %w", err)
		}
		p.pins = append(p.pins, pin)
	}
	return p, nil
}

// ReadKeys takes one sample of every pin. It never blocks.
func (p *Pad) ReadKeys() kbd.KeyMask {
	var key kbd.KeyMask
	for i, pin := range p.pins {
		if pin.Read() == gpio.Low {
			key |= 1 << i
		}
	}
	return key
}
