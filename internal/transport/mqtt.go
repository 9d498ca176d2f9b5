// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package transport

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// MQTTMirror republishes every outbound message on an MQTT broker.
// Publishes use QoS 0 and are never awaited.
type MQTTMirror struct {
	client mqtt.Client
}

type mirrorPayload struct {
	Args []interface{} `json:"args"`
}

// NewMQTTMirror connects to broker.
func NewMQTTMirror(broker, clientID string) (*MQTTMirror, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", broker, token.Error())
	}
	log.Printf("mqtt: connected to broker at %s", broker)
	return &MQTTMirror{client: client}, nil
}

// Topic maps an OSC address onto an MQTT topic: "/ccbt1/imu/acc" -> "ccbt1/imu/acc".
func Topic(address string) string {
	return strings.TrimPrefix(address, "/")
}

// Payload is the JSON body published for args.
func Payload(args ...interface{}) ([]byte, error) {
	norm, err := normalize(args)
	if err != nil {
		return nil, err
	}
	return json.Marshal(mirrorPayload{Args: norm})
}

func (m *MQTTMirror) Send(address string, args ...interface{}) error {
	payload, err := Payload(args...)
	if err != nil {
		return err
	}
	m.client.Publish(Topic(address), 0, false, payload)
	return nil
}

// Close disconnects, allowing 250 ms for queued publishes.
func (m *MQTTMirror) Close() {
	m.client.Disconnect(250)
}
