// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/sensor_node/internal/config"
	"github.com/relabs-tech/sensor_node/internal/device"
	"github.com/relabs-tech/sensor_node/internal/display"
	"github.com/relabs-tech/sensor_node/internal/imu"
	"github.com/relabs-tech/sensor_node/internal/network"
	"github.com/relabs-tech/sensor_node/internal/schedule"
	"github.com/relabs-tech/sensor_node/internal/sensors"
	"github.com/relabs-tech/sensor_node/internal/store"
	"github.com/relabs-tech/sensor_node/internal/transport"
)

// OpenDeps opens every collaborator cfg asks for. The returned func closes
// whatever was opened; on error everything opened so far is already closed.
func OpenDeps(cfg *config.Config) (Deps, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (Deps, func(), error) {
		closeAll()
		return Deps{}, func() {}, err
	}

	prefs, err := store.Open(cfg.StorePath)
	if err != nil {
		return fail(err)
	}

	d := Deps{
		Config: cfg,
		Prefs:  prefs,
		Clock:  schedule.SystemClock{},
		Link:   network.NewInterface(cfg.NetInterface, cfg.NetDisconnectCmd, cfg.NetConnectCmd),
	}

	if d.IMU, err = OpenIMU(cfg); err != nil {
		return fail(err)
	}

	if cfg.MockSensors {
		log.Println("node: using mock IMU, microphone and battery")
		d.Mic = sensors.NewToneCapture()
		d.Battery = sensors.FixedBattery{Percent: 100}
	} else {
		mic, err := sensors.OpenMicrophone(cfg.AudioDevice, cfg.AudioReadTimeout)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { mic.Close() })
		d.Mic = mic
		d.Battery = sensors.PowerSupply{Dir: cfg.BatterySupply}
	}

	if cfg.ButtonPin == "" {
		d.Button = sensors.NoButton{}
	} else if d.Button, err = sensors.OpenButton(cfg.ButtonPin); err != nil {
		return fail(err)
	}

	if cfg.DisplayEnabled {
		oled, err := display.OpenOLED(cfg.DisplayI2CBus)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { oled.Close() })
		d.Screen = oled
	} else {
		d.Screen = &display.LogScreen{}
	}

	sender, closeSender, err := openSender(cfg, device.Load(prefs))
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeSender)
	d.Sender = sender

	return d, closeAll, nil
}

// openSender builds the OSC sender and, with MQTT_BROKER set, the mirror.
// The mirror is optional: when the broker is unreachable the node runs with
// OSC alone.
func openSender(cfg *config.Config, dev device.Config) (transport.Sender, func(), error) {
	osc := transport.NewOSCSender(dev.ServerAddress, dev.ServerPort)
	log.Printf("osc: sending to %s", dev.Destination())

	if cfg.MQTTBroker == "" {
		return osc, func() {}, nil
	}

	mirror, err := transport.NewMQTTMirror(cfg.MQTTBroker, cfg.MQTTClientID)
	if err != nil {
		log.Warnf("node: mqtt mirror disabled: %v", err)
		return osc, func() {}, nil
	}
	return transport.Multi{osc, mirror}, mirror.Close, nil
}

// OpenIMU returns the hardware or mock IMU reader cfg selects.
func OpenIMU(cfg *config.Config) (imu.Reader, error) {
	if cfg.MockSensors {
		return sensors.NewMockIMU(), nil
	}
	return sensors.NewIMUSource(cfg)
}
