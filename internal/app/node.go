// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/relabs-tech/sensor_node/internal/audio"
	"github.com/relabs-tech/sensor_node/internal/config"
	"github.com/relabs-tech/sensor_node/internal/device"
	"github.com/relabs-tech/sensor_node/internal/display"
	"github.com/relabs-tech/sensor_node/internal/health"
	"github.com/relabs-tech/sensor_node/internal/imu"
	"github.com/relabs-tech/sensor_node/internal/motion"
	"github.com/relabs-tech/sensor_node/internal/network"
	"github.com/relabs-tech/sensor_node/internal/schedule"
	"github.com/relabs-tech/sensor_node/internal/sensors"
	"github.com/relabs-tech/sensor_node/internal/store"
	"github.com/relabs-tech/sensor_node/internal/transport"
)

// ErrRestart asks the process supervisor to restart the node.
var ErrRestart = errors.New("node: restart requested")

// RestartExitCode is the exit status used for ErrRestart.
const RestartExitCode = 3

// Deps are the collaborators a Node is built from. Hardware and mock
// implementations are chosen by the caller.
type Deps struct {
	Config  *config.Config
	Prefs   *store.Prefs
	Clock   schedule.Clock
	IMU     imu.Reader
	Mic     audio.Capture
	Screen  display.Screen
	Sender  transport.Sender
	Link    network.Link
	Battery sensors.BatteryReader
	Button  sensors.Button
}

// Node is the application context shared by all tasks. Each resource group
// has its own lock and no lock is ever taken while another is held, except
// that imuReadMu is taken before imuMu.
type Node struct {
	cfg    *config.Config
	prefs  *store.Prefs
	clock  schedule.Clock
	device device.Config
	addr   addresses

	imuReadMu sync.Mutex // serializes IMU reads between sampling and recalibration
	imuMu     sync.Mutex // guards motion's state
	motion    *motion.Sampler

	audioMu sync.Mutex // guards audio's accumulator
	audio   *audio.Sampler

	displayMu sync.Mutex // guards screen
	screen    display.Screen

	sender  transport.Sender
	link    network.Link
	battery sensors.BatteryReader
	button  sensors.Button

	lastBattery atomic.Pointer[sensors.BatteryStatus] // last successful reading

	health health.Monitor // health task only
}

// addresses are built once at startup from the device config.
type addresses struct {
	battery  string
	acc      string
	gyro     string
	rotation string
	volume   string
}

func newAddresses(d device.Config) addresses {
	return addresses{
		battery:  d.Address("status/battery"),
		acc:      d.Address("imu/acc"),
		gyro:     d.Address("imu/gyro"),
		rotation: d.Address("imu/rotation"),
		volume:   d.Address("mic/volume"),
	}
}

// NewNode assembles the context. The motion sampler still needs Initialize.
func NewNode(d Deps) *Node {
	dev := device.Load(d.Prefs)
	blockSize := d.Config.AudioBlockSize
	if blockSize <= 0 {
		blockSize = 512
	}

	return &Node{
		cfg:     d.Config,
		prefs:   d.Prefs,
		clock:   d.Clock,
		device:  dev,
		addr:    newAddresses(dev),
		motion:  motion.NewSampler(d.IMU, d.Prefs, d.Clock),
		audio:   audio.NewSampler(d.Mic, blockSize),
		screen:  d.Screen,
		sender:  d.Sender,
		link:    d.Link,
		battery: d.Battery,
		button:  d.Button,
	}
}

// Device returns the OSC destination the node was started with.
func (n *Node) Device() device.Config {
	return n.device
}

// show draws a page under the display lock.
func (n *Node) show(p display.Page) error {
	n.displayMu.Lock()
	defer n.displayMu.Unlock()
	return n.screen.Show(p)
}

// MotionSnapshot copies the latest IMU state under the IMU lock.
func (n *Node) MotionSnapshot() motion.Snapshot {
	n.imuMu.Lock()
	defer n.imuMu.Unlock()
	return n.motion.Snapshot()
}

// AudioLevel returns the last published loudness without draining.
func (n *Node) AudioLevel() audio.Level {
	n.audioMu.Lock()
	defer n.audioMu.Unlock()
	return n.audio.Last()
}
