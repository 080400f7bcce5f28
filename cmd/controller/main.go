// command controller runs the keypad event pipeline against the
// attached keypad and prints the decoded key events.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"keydeck.dev/kbd"
	"keydeck.dev/record"
	"keydeck.dev/tick"
)

var (
	serialDev  = flag.String("serial", "", "serial keypad `device`; probes the usual ports if empty")
	recordPath = flag.String("record", "", "write the session's key events to `file`")
	replayPath = flag.String("replay", "", "replay a recorded session from `file` instead of sampling hardware")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "controller: %v\n", err)
		os.Exit(2)
	}
}

func run() error {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))
	flag.Parse()
	if err := initPlatform(); err != nil {
		log.Printf("platform: %v", err)
	}
	cfg := platformConfig()
	cfg.Idle = func() {
		time.Sleep(time.Duration(cfg.CheckInterval) * time.Millisecond / 2)
	}
	clock := tick.NewWall()

	var dev kbd.Device
	var replay *record.Replayer
	if *replayPath != "" {
		events, err := loadRecording(*replayPath)
		if err != nil {
			return err
		}
		replay = record.NewReplayer(clock, events)
		dev = replay
	} else {
		d, err := openDevice()
		if err != nil {
			return err
		}
		dev = d
	}
	p := kbd.New(dev, clock, cfg)

	var rec *record.Recorder
	if *recordPath != "" {
		rec = record.NewRecorder(clock)
		p.AddHandler(rec.Handler(0))
	}

	// The timer service: one dispatch per check interval.
	go func() {
		t := time.NewTicker(time.Duration(cfg.CheckInterval) * time.Millisecond)
		defer t.Stop()
		for range t.C {
			p.Poll()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	for {
		select {
		case <-quit:
			return saveRecording(rec)
		default:
		}
		key := p.GetTimeout(1000)
		if key == kbd.Timeout {
			if replay != nil && replay.Done() {
				return saveRecording(rec)
			}
			continue
		}
		if key&kbd.Repeat != 0 {
			log.Printf("keys %#04x repeat", key&^kbd.Repeat)
		} else {
			log.Printf("keys %#04x", key)
		}
	}
}

func loadRecording(path string) ([]record.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return record.Decode(f)
}

func saveRecording(rec *record.Recorder) error {
	if rec == nil {
		return nil
	}
	f, err := os.Create(*recordPath)
	if err != nil {
		return err
	}
	if err := record.Encode(f, rec.Events()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
