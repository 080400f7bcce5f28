package record

import (
	"bytes"
	"testing"

	"keydeck.dev/kbd"
	"keydeck.dev/tick"
)

type fakeClock struct {
	t tick.Tick
}

func (c *fakeClock) Now() tick.Tick { return c.t }

type fakeDev struct {
	key kbd.KeyMask
}

func (d *fakeDev) ReadKeys() kbd.KeyMask { return d.key }

func TestEncodeDecode(t *testing.T) {
	events := []Event{
		{At: 40, Key: 0x01},
		{At: 120, Key: 0},
		{At: 0xfffffff0, Key: 0x01 | kbd.Repeat},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, events); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(events) {
		t.Fatalf("decoded %d events, want %d", len(got), len(events))
	}
	for i, e := range events {
		if got[i] != e {
			t.Errorf("event %d = %+v, want %+v", i, got[i], e)
		}
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	// A map with an unassigned key: {1: 0, 2: 0, 99: 0}.
	raw := []byte{0x81, 0xa3, 0x01, 0x00, 0x02, 0x00, 0x18, 0x63, 0x00}
	if _, err := Decode(bytes.NewReader(raw)); err == nil {
		t.Error("decoding an event with unknown fields succeeded")
	}
}

func TestRecorderCapturesTransitions(t *testing.T) {
	clock := &fakeClock{}
	dev := &fakeDev{}
	cfg := kbd.DefaultConfig()
	p := kbd.New(dev, clock, cfg)
	rec := NewRecorder(clock)
	p.AddHandler(rec.Handler(0))

	step := func(key kbd.KeyMask) {
		dev.key = key
		p.Poll()
		clock.t = clock.t.Add(cfg.CheckInterval)
	}
	// Press through the debounce window, then release.
	hold := int(cfg.DebounceTime/cfg.CheckInterval) + 2
	step(0)
	for i := 0; i < hold; i++ {
		step(0x02)
	}
	for i := 0; i < hold; i++ {
		step(0)
	}

	events := rec.Events()
	if len(events) != 2 {
		t.Fatalf("recorded %d events, want press and release: %+v", len(events), events)
	}
	if events[0].Key != 0x02 || events[1].Key != 0 {
		t.Errorf("recorded %+v, want press 0x02 then release", events)
	}
	if tick.Since(events[1].At, events[0].At) <= 0 {
		t.Errorf("release at %d not after press at %d", events[1].At, events[0].At)
	}
}

func TestReplayer(t *testing.T) {
	events := []Event{
		{At: 1000, Key: 0x01},
		{At: 1050, Key: 0},
		{At: 1100, Key: 0x04 | kbd.Repeat},
	}
	clock := &fakeClock{t: 500}
	r := NewReplayer(clock, events)

	if got := r.ReadKeys(); got != 0x01 {
		t.Errorf("keys at start = %#x, want 0x01", got)
	}
	clock.t = 540
	if got := r.ReadKeys(); got != 0x01 {
		t.Errorf("keys at +40 = %#x, want 0x01", got)
	}
	clock.t = 550
	if got := r.ReadKeys(); got != 0 {
		t.Errorf("keys at +50 = %#x, want release", got)
	}
	clock.t = 600
	if got := r.ReadKeys(); got != 0x04 {
		t.Errorf("keys at +100 = %#x, want 0x04 with flags stripped", got)
	}
	if !r.Done() {
		t.Error("replay not done after the last event")
	}
}
