package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/relabs-tech/sensor_node/internal/device"
	"github.com/relabs-tech/sensor_node/internal/motion"
)

var custom = device.Config{ServerAddress: "10.1.2.3", ServerPort: 7000, ClientName: "stage-left"}

func newButtonNode(t *testing.T, intervals [][2]time.Duration, stopAfter time.Duration) (*testNode, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	btn := &scriptedButton{intervals: intervals}
	n := newTestNode(t, btn)
	btn.clock = n.clock
	btn.start = n.clock.Now()

	confirmSeen := false
	btn.onPoll = func(elapsed time.Duration) {
		if n.screen.Last().Header == "RESET?" && !confirmSeen {
			confirmSeen = true
			// the prompt owns the display until it is answered
			if n.displayMu.TryLock() {
				n.displayMu.Unlock()
				t.Error("display lock free while confirmation is pending")
			}
		}
		if elapsed >= stopAfter {
			cancel()
		}
	}

	if err := device.Save(n.prefs, custom); err != nil {
		t.Fatal(err)
	}
	return n, ctx
}

func TestResetConfirmedClearsDevice(t *testing.T) {
	ms := time.Millisecond
	n, ctx := newButtonNode(t, [][2]time.Duration{
		{0, 3100 * ms},         // hold
		{5000 * ms, 5100 * ms}, // confirm inside the window
	}, 20*time.Second)

	err := n.RunButton(ctx)
	if !errors.Is(err, ErrRestart) {
		t.Fatalf("RunButton = %v, want ErrRestart", err)
	}
	defaults := device.Config{
		ServerAddress: device.DefaultServerAddress,
		ServerPort:    device.DefaultServerPort,
		ClientName:    device.DefaultClientName,
	}
	if got := device.Load(n.prefs); got != defaults {
		t.Errorf("device config after reset = %+v, want defaults", got)
	}
	if !n.prefs.GetBool(motion.Namespace, "calibrated", false) {
		t.Error("factory reset cleared the calibration")
	}
	if n.link.disconnects != 1 {
		t.Errorf("disconnects = %d, want 1", n.link.disconnects)
	}
	if !n.displayMu.TryLock() {
		t.Fatal("display lock still held after RunButton returned")
	}
	n.displayMu.Unlock()
}

func TestResetTimeoutKeepsDevice(t *testing.T) {
	ms := time.Millisecond
	n, ctx := newButtonNode(t, [][2]time.Duration{
		{0, 3100 * ms},
		{8200 * ms, 8300 * ms}, // after the window: an ordinary short press
	}, 12*time.Second)

	if err := n.RunButton(ctx); err != nil {
		t.Fatalf("RunButton = %v, want nil after cancel", err)
	}
	if got := device.Load(n.prefs); got != custom {
		t.Errorf("device config = %+v, want %+v kept", got, custom)
	}
	if n.link.disconnects != 0 {
		t.Errorf("disconnects = %d, want 0", n.link.disconnects)
	}
	if got := n.screen.Last().Header; got != "192.168.100.11" {
		t.Errorf("screen after cancel = %q, want status page", got)
	}
	if !n.displayMu.TryLock() {
		t.Fatal("display lock still held after cancel")
	}
	n.displayMu.Unlock()
}

func TestShortPressIgnored(t *testing.T) {
	n, ctx := newButtonNode(t, [][2]time.Duration{{0, 500 * time.Millisecond}}, 10*time.Second)

	if err := n.RunButton(ctx); err != nil {
		t.Fatalf("RunButton = %v", err)
	}
	if got := device.Load(n.prefs); got != custom {
		t.Errorf("device config = %+v", got)
	}
}
