package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/relabs-tech/sensor_node/internal/config"
	"github.com/relabs-tech/sensor_node/internal/display"
	"github.com/relabs-tech/sensor_node/internal/imu"
	"github.com/relabs-tech/sensor_node/internal/network"
	"github.com/relabs-tech/sensor_node/internal/schedule"
	"github.com/relabs-tech/sensor_node/internal/sensors"
	"github.com/relabs-tech/sensor_node/internal/store"
)

// flatIMU is a device lying still and level.
type flatIMU struct{}

func (flatIMU) Read() (imu.Sample, error) {
	return imu.Sample{Acc: imu.Vec3{0, 0, 1}}, nil
}

// gatedIMU is a flatIMU whose first read after arm parks until release.
type gatedIMU struct {
	mu      sync.Mutex
	reads   int
	armed   bool
	parked  chan struct{}
	release chan struct{}
}

func newGatedIMU() *gatedIMU {
	return &gatedIMU{parked: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedIMU) arm() {
	g.mu.Lock()
	g.armed = true
	g.mu.Unlock()
}

func (g *gatedIMU) readCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reads
}

func (g *gatedIMU) Read() (imu.Sample, error) {
	g.mu.Lock()
	g.reads++
	park := g.armed
	g.armed = false
	g.mu.Unlock()

	if park {
		close(g.parked)
		<-g.release
	}
	return flatIMU{}.Read()
}

// squareMic returns full blocks of a ±amp square wave, power = amp.
type squareMic struct{ amp int16 }

func (m squareMic) ReadBlock(buf []int16) (int, error) {
	for i := range buf {
		if i%2 == 0 {
			buf[i] = m.amp
		} else {
			buf[i] = -m.amp
		}
	}
	return len(buf), nil
}

type sent struct {
	address string
	args    []interface{}
}

// recordingSender records messages. With node set it also checks that no
// node lock is held while sending; only meaningful when ticks run on the
// test goroutine.
type recordingSender struct {
	node *Node

	mu         sync.Mutex
	msgs       []sent
	violations []string
}

func (s *recordingSender) Send(address string, args ...interface{}) error {
	if s.node != nil {
		for name, m := range map[string]*sync.Mutex{
			"imu":     &s.node.imuMu,
			"audio":   &s.node.audioMu,
			"display": &s.node.displayMu,
		} {
			if !m.TryLock() {
				s.mu.Lock()
				s.violations = append(s.violations, name+" held while sending "+address)
				s.mu.Unlock()
				continue
			}
			m.Unlock()
		}
	}
	s.mu.Lock()
	s.msgs = append(s.msgs, sent{address: address, args: args})
	s.mu.Unlock()
	return nil
}

func (s *recordingSender) sent() []sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sent(nil), s.msgs...)
}

type fakeLink struct {
	mu          sync.Mutex
	up          bool
	disconnects int
	reconnects  int
}

func (l *fakeLink) Reachable() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.up
}

func (l *fakeLink) Disconnect(context.Context) error {
	l.mu.Lock()
	l.disconnects++
	l.mu.Unlock()
	return nil
}

func (l *fakeLink) Reconnect(context.Context) error {
	l.mu.Lock()
	l.reconnects++
	l.mu.Unlock()
	return nil
}

func (l *fakeLink) Info() network.Info {
	return network.Info{IP: "192.168.100.11", MAC: "aa:bb:cc:dd:ee:ff"}
}

// scriptedButton is pressed during the given intervals, measured from start
// on clock. onPoll runs before every read.
type scriptedButton struct {
	clock     *schedule.ManualClock
	start     time.Time
	intervals [][2]time.Duration
	onPoll    func(elapsed time.Duration)
}

func (b *scriptedButton) Pressed() bool {
	elapsed := b.clock.Now().Sub(b.start)
	if b.onPoll != nil {
		b.onPoll(elapsed)
	}
	for _, iv := range b.intervals {
		if elapsed >= iv[0] && elapsed < iv[1] {
			return true
		}
	}
	return false
}

type testNode struct {
	*Node
	clock  *schedule.ManualClock
	prefs  *store.Prefs
	sender *recordingSender
	link   *fakeLink
	screen *display.LogScreen
}

func newTestNode(t *testing.T, btn sensors.Button) *testNode {
	t.Helper()

	prefs, err := store.Open(filepath.Join(t.TempDir(), "prefs.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Defaults()
	cfg.MockSensors = true
	cfg.AudioBlockSize = 64

	if btn == nil {
		btn = sensors.NoButton{}
	}

	tn := &testNode{
		clock:  schedule.NewManualClock(time.Unix(1_700_000_000, 0)),
		prefs:  prefs,
		sender: &recordingSender{},
		link:   &fakeLink{up: true},
		screen: &display.LogScreen{},
	}
	tn.Node = NewNode(Deps{
		Config:  cfg,
		Prefs:   prefs,
		Clock:   tn.clock,
		IMU:     flatIMU{},
		Mic:     squareMic{amp: 100},
		Screen:  tn.screen,
		Sender:  tn.sender,
		Link:    tn.link,
		Battery: sensors.FixedBattery{Percent: 64, Charging: true},
		Button:  btn,
	})
	tn.sender.node = tn.Node

	if err := tn.motion.Initialize(context.Background(), false); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return tn
}
