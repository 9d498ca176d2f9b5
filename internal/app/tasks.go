// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/sensor_node/internal/display"
	"github.com/relabs-tech/sensor_node/internal/health"
	"github.com/relabs-tech/sensor_node/internal/schedule"
	"github.com/relabs-tech/sensor_node/internal/sensors"
)

// Task periods.
const (
	HealthPeriod      = 30 * time.Second
	IMUSamplePeriod   = 10 * time.Millisecond
	AudioSamplePeriod = 5 * time.Millisecond
)

var (
	IMUPublishPeriod   = schedule.Hz(60)
	AudioPublishPeriod = schedule.Hz(30)
)

// Tasks returns the node's periodic tasks.
func (n *Node) Tasks() []schedule.Task {
	return []schedule.Task{
		{Name: "health", Period: HealthPeriod, Tick: n.healthTick},
		{Name: "imu-sample", Period: IMUSamplePeriod, Tick: n.imuSampleTick},
		{Name: "audio-sample", Period: AudioSamplePeriod, Tick: n.audioSampleTick},
		{Name: "imu-publish", Period: IMUPublishPeriod, Tick: n.imuPublishTick},
		{Name: "audio-publish", Period: AudioPublishPeriod, Tick: n.audioPublishTick},
	}
}

// statusPage gathers the status screen contents. It does I/O, so it runs
// before the display lock is taken. A failed battery read falls back to the
// last good one; ok is false when there has never been one.
func (n *Node) statusPage() (page display.Page, bat sensors.BatteryStatus, ok bool) {
	info := n.link.Info()
	if b, err := n.battery.ReadBattery(); err != nil {
		log.Debugf("health: battery: %v", err)
	} else {
		n.lastBattery.Store(&b)
	}

	st := display.Status{
		IP:         info.IP,
		MAC:        info.MAC,
		ClientName: n.device.ClientName,
		Port:       n.device.ServerPort,
		Battery:    -1,
	}
	if last := n.lastBattery.Load(); last != nil {
		bat, ok = *last, true
		st.Battery, st.Charging = bat.Percent, bat.Charging
	}
	return display.StatusPage(st), bat, ok
}

func (n *Node) healthTick(ctx context.Context) error {
	page, bat, haveBattery := n.statusPage()
	if err := n.show(page); err != nil {
		log.Printf("health: display: %v", err)
	}

	reachable := n.link.Reachable()
	action := n.health.Observe(reachable)
	if reachable {
		log.Debug("health: network reachable")
	} else {
		log.WithFields(log.Fields{
			"failures":   n.health.Failures(),
			"reconnects": n.health.Reconnects(),
		}).Warn("health: network not reachable")
	}

	switch action {
	case health.Restart:
		log.Errorf("health: %d reconnect cycles failed, restarting", health.MaxReconnects)
		return ErrRestart
	case health.Reconnect:
		log.Warn("health: trying to reconnect")
		if err := n.link.Disconnect(ctx); err != nil {
			log.Printf("health: %v", err)
		}
		if err := n.link.Reconnect(ctx); err != nil {
			log.Printf("health: %v", err)
		}
	}

	if !haveBattery {
		return nil
	}
	if err := n.sender.Send(n.addr.battery, bat.Percent, bat.Charging); err != nil {
		log.Debugf("health: send battery: %v", err)
	}
	return nil
}

func (n *Node) imuSampleTick(context.Context) error {
	if !n.imuReadMu.TryLock() {
		return nil // recalibrating
	}
	defer n.imuReadMu.Unlock()

	n.imuMu.Lock()
	err := n.motion.SampleOnce()
	n.imuMu.Unlock()

	if err != nil {
		log.Debugf("imu-sample: %v", err)
	}
	return nil
}

func (n *Node) audioSampleTick(context.Context) error {
	// Only this task touches the capture buffer; the lock guards the accumulator.
	block, err := n.audio.CaptureBlock()
	if err != nil {
		log.Debugf("audio-sample: %v", err)
	}

	n.audioMu.Lock()
	n.audio.Accumulate(block)
	n.audioMu.Unlock()
	return nil
}

func (n *Node) imuPublishTick(context.Context) error {
	snap := n.MotionSnapshot()

	if err := n.sender.Send(n.addr.acc, snap.Acc[0], snap.Acc[1], snap.Acc[2]); err != nil {
		log.Debugf("imu-publish: %v", err)
	}
	if err := n.sender.Send(n.addr.gyro, snap.Gyro[0], snap.Gyro[1], snap.Gyro[2]); err != nil {
		log.Debugf("imu-publish: %v", err)
	}
	if err := n.sender.Send(n.addr.rotation, snap.Pose.Roll, snap.Pose.Pitch); err != nil {
		log.Debugf("imu-publish: %v", err)
	}
	return nil
}

func (n *Node) audioPublishTick(context.Context) error {
	n.audioMu.Lock()
	level := n.audio.DrainAverage()
	n.audioMu.Unlock()

	if err := n.sender.Send(n.addr.volume, level.Power, level.Decibels); err != nil {
		log.Debugf("audio-publish: %v", err)
	}
	return nil
}
