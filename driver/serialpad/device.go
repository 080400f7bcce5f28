package serialpad

import (
	"errors"
	"io"
	"runtime"

	"github.com/tarm/serial"
)

// Open opens the serial port the keypad MCU is attached to. With an
// empty dev the usual USB serial device names are probed.
func Open(dev string) (io.ReadWriteCloser, error) {
	const baudRate = 19200

	var devices []string
	if dev != "" {
		devices = append(devices, dev)
	} else {
		switch runtime.GOOS {
		case "windows":
			devices = append(devices, "COM3")
		case "linux":
			devices = append(devices, "/dev/ttyAMA0", "/dev/ttyUSB0")
		}
	}
	if len(devices) == 0 {
		return nil, errors.New("serialpad: no device specified")
	}
	var firstErr error
	for _, dev := range devices {
		c := &serial.Config{Name: dev, Baud: baudRate}
		s, err := serial.OpenPort(c)
		if err == nil {
			return s, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
