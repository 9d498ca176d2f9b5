package app

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/relabs-tech/sensor_node/internal/audio"
	"github.com/relabs-tech/sensor_node/internal/health"
	"github.com/relabs-tech/sensor_node/internal/sensors"
)

func TestIMUPublishMessages(t *testing.T) {
	n := newTestNode(t, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		n.clock.Advance(IMUSamplePeriod)
		if err := n.imuSampleTick(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if err := n.imuPublishTick(ctx); err != nil {
		t.Fatal(err)
	}

	msgs := n.sender.sent()
	want := []struct {
		address string
		nargs   int
	}{
		{"/ccbt1/imu/acc", 3},
		{"/ccbt1/imu/gyro", 3},
		{"/ccbt1/imu/rotation", 2},
	}
	if len(msgs) != len(want) {
		t.Fatalf("sent %d messages, want %d", len(msgs), len(want))
	}
	for i, w := range want {
		if msgs[i].address != w.address || len(msgs[i].args) != w.nargs {
			t.Errorf("message %d = %s with %d args, want %s with %d",
				i, msgs[i].address, len(msgs[i].args), w.address, w.nargs)
		}
	}

	// Flat and still after calibration: acc ≈ (0,0,1), level pose.
	if az := msgs[0].args[2].(float64); math.Abs(az-1) > 1e-9 {
		t.Errorf("accZ = %v, want 1", az)
	}
	if roll := msgs[2].args[0].(float64); math.Abs(roll) > 1e-6 {
		t.Errorf("roll = %v, want 0", roll)
	}
	if len(n.sender.violations) > 0 {
		t.Errorf("lock held during send: %v", n.sender.violations)
	}
}

func TestAudioPublishDrainsAverage(t *testing.T) {
	n := newTestNode(t, nil)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		if err := n.audioSampleTick(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if err := n.audioPublishTick(ctx); err != nil {
		t.Fatal(err)
	}
	// no new blocks: the cached reading is sent again
	if err := n.audioPublishTick(ctx); err != nil {
		t.Fatal(err)
	}

	msgs := n.sender.sent()
	if len(msgs) != 2 {
		t.Fatalf("sent %d messages, want 2", len(msgs))
	}
	for _, m := range msgs {
		if m.address != "/ccbt1/mic/volume" {
			t.Errorf("address = %s", m.address)
		}
		power := m.args[0].(float64)
		db := m.args[1].(float64)
		if math.Abs(power-100) > 1e-6 {
			t.Errorf("power = %v, want 100", power)
		}
		if math.Abs(db-audio.ToDecibels(100)) > 1e-9 {
			t.Errorf("db = %v, want %v", db, audio.ToDecibels(100))
		}
	}
	if _, count := n.audio.Pending(); count != 0 {
		t.Errorf("accumulator not reset: %d blocks pending", count)
	}
	if len(n.sender.violations) > 0 {
		t.Errorf("lock held during send: %v", n.sender.violations)
	}
}

func TestHealthTickEscalates(t *testing.T) {
	n := newTestNode(t, nil)
	ctx := context.Background()
	n.link.up = false

	for i := 0; i < health.MaxFailures; i++ {
		if err := n.healthTick(ctx); err != nil {
			t.Fatalf("tick %d: %v", i+1, err)
		}
	}
	if n.link.disconnects != 1 || n.link.reconnects != 1 {
		t.Fatalf("after %d failures: disconnects=%d reconnects=%d, want 1/1",
			health.MaxFailures, n.link.disconnects, n.link.reconnects)
	}

	for i := health.MaxFailures; i < health.MaxFailures*health.MaxReconnects; i++ {
		if err := n.healthTick(ctx); err != nil {
			t.Fatalf("tick %d: %v", i+1, err)
		}
	}
	if n.link.reconnects != health.MaxReconnects {
		t.Fatalf("reconnects = %d, want %d", n.link.reconnects, health.MaxReconnects)
	}
	if err := n.healthTick(ctx); !errors.Is(err, ErrRestart) {
		t.Errorf("tick after exhausted reconnects = %v, want ErrRestart", err)
	}
}

func TestHealthTickReportsBattery(t *testing.T) {
	n := newTestNode(t, nil)
	if err := n.healthTick(context.Background()); err != nil {
		t.Fatal(err)
	}

	msgs := n.sender.sent()
	if len(msgs) != 1 || msgs[0].address != "/ccbt1/status/battery" {
		t.Fatalf("sent %+v", msgs)
	}
	if msgs[0].args[0] != 64 || msgs[0].args[1] != true {
		t.Errorf("battery args = %v, want [64 true]", msgs[0].args)
	}
	if got := n.screen.Last().Header; got != "192.168.100.11" {
		t.Errorf("status page header = %q", got)
	}
	if len(n.sender.violations) > 0 {
		t.Errorf("lock held during send: %v", n.sender.violations)
	}
}

// flakyBattery fails whenever fail is set.
type flakyBattery struct {
	status sensors.BatteryStatus
	fail   bool
}

func (b *flakyBattery) ReadBattery() (sensors.BatteryStatus, error) {
	if b.fail {
		return sensors.BatteryStatus{}, errors.New("battery: no such file")
	}
	return b.status, nil
}

func TestHealthTickBatteryReadFailure(t *testing.T) {
	n := newTestNode(t, nil)
	bat := &flakyBattery{status: sensors.BatteryStatus{Percent: 42}, fail: true}
	n.battery = bat
	ctx := context.Background()

	// never read: nothing is reported
	if err := n.healthTick(ctx); err != nil {
		t.Fatal(err)
	}
	if msgs := n.sender.sent(); len(msgs) != 0 {
		t.Fatalf("sent %+v without a battery reading", msgs)
	}
	if got := n.screen.Last().Lines[2]; got != "BAT --" {
		t.Errorf("battery line = %q", got)
	}

	bat.fail = false
	if err := n.healthTick(ctx); err != nil {
		t.Fatal(err)
	}

	// a later failure repeats the last good reading
	bat.fail = true
	if err := n.healthTick(ctx); err != nil {
		t.Fatal(err)
	}
	msgs := n.sender.sent()
	if len(msgs) != 2 {
		t.Fatalf("sent %d messages, want 2", len(msgs))
	}
	for _, m := range msgs {
		if m.args[0] != 42 || m.args[1] != false {
			t.Errorf("battery args = %v, want [42 false]", m.args)
		}
	}
	if got := n.screen.Last().Lines[2]; got != "BAT 42% Chg No" {
		t.Errorf("battery line = %q", got)
	}
}

func TestTaskPeriods(t *testing.T) {
	n := newTestNode(t, nil)
	tasks := n.Tasks()
	if len(tasks) != 5 {
		t.Fatalf("%d tasks, want 5", len(tasks))
	}
	for _, task := range tasks {
		if task.Period <= 0 || task.Tick == nil {
			t.Errorf("task %s: period %v", task.Name, task.Period)
		}
	}
	if IMUPublishPeriod >= IMUSamplePeriod*2 || IMUPublishPeriod <= IMUSamplePeriod {
		t.Errorf("IMU publish period %v", IMUPublishPeriod)
	}
}
