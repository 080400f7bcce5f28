//go:build linux && (arm || arm64)

package main

import (
	"flag"
	"fmt"
	"strings"

	"golang.org/x/sys/unix"

	"keydeck.dev/driver/buzzer"
	"keydeck.dev/driver/gpiopad"
	"keydeck.dev/driver/serialpad"
	"keydeck.dev/kbd"
)

var (
	// Default pins match the Waveshare 1.3" HAT joystick and buttons.
	gpioPins  = flag.String("pins", "GPIO6,GPIO19,GPIO5,GPIO26,GPIO13,GPIO21,GPIO20,GPIO16", "comma separated GPIO key pins, key bit 0 first")
	buzzerPin = flag.String("buzzer", "GPIO12", "buzzer GPIO pin, empty to disable feedback")
)

// gpioDevice pairs the keypad sampler with the feedback buzzer.
type gpioDevice struct {
	*gpiopad.Pad
	*buzzer.Buzzer
}

func initPlatform() error {
	// The dispatch path runs every 10 ms; keep it from page faulting.
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return fmt.Errorf("mlockall: %w", err)
	}
	return nil
}

func openDevice() (kbd.Device, error) {
	if *serialDev != "" {
		port, err := serialpad.Open(*serialDev)
		if err != nil {
			return nil, err
		}
		return serialpad.New(port), nil
	}
	pad, err := gpiopad.Open(strings.Split(*gpioPins, ","))
	if err != nil {
		return nil, err
	}
	if *buzzerPin == "" {
		return pad, nil
	}
	buz, err := buzzer.Open(*buzzerPin)
	if err != nil {
		return nil, err
	}
	return &gpioDevice{pad, buz}, nil
}

func platformConfig() kbd.Config {
	cfg := kbd.DefaultConfig()
	// The joystick directions repeat while held; the buttons fire
	// once per press. Center qualifies as a long press.
	cfg.RepeatMask = 0x000f
	cfg.LongMask = 0x0010
	return cfg
}
