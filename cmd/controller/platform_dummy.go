//go:build !(linux && (arm || arm64))

package main

import (
	"keydeck.dev/driver/serialpad"
	"keydeck.dev/kbd"
)

func initPlatform() error {
	return nil
}

func openDevice() (kbd.Device, error) {
	port, err := serialpad.Open(*serialDev)
	if err != nil {
		return nil, err
	}
	return serialpad.New(port), nil
}

func platformConfig() kbd.Config {
	cfg := kbd.DefaultConfig()
	cfg.RepeatMask = 0x3fff
	return cfg
}
