// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/hypebeast/go-osc/osc"
	log "github.com/sirupsen/logrus"
)

var consoleTags = map[string]string{
	"imu/acc":        "[ACC ]",
	"imu/gyro":       "[GYRO]",
	"imu/rotation":   "[ROT ]",
	"mic/volume":     "[MIC ]",
	"status/battery": "[BAT ]",
}

// FormatMessage renders one node message as a console line.
func FormatMessage(address string, args []interface{}) string {
	tag := "[MSG ]"
	for suffix, t := range consoleTags {
		if strings.HasSuffix(address, "/"+suffix) {
			tag = t
			break
		}
	}

	var b strings.Builder
	b.WriteString(tag)
	b.WriteString(" ")
	b.WriteString(address)
	for _, a := range args {
		switch v := a.(type) {
		case float32:
			fmt.Fprintf(&b, " %9.3f", v)
		case float64:
			fmt.Fprintf(&b, " %9.3f", v)
		case int32:
			fmt.Fprintf(&b, " %d", v)
		default:
			fmt.Fprintf(&b, " %v", v)
		}
	}
	return b.String()
}

// RunConsole listens for OSC datagrams on listenAddr (e.g. ":9000") and
// writes every message to out until ctx is done.
func RunConsole(ctx context.Context, listenAddr string, out io.Writer) error {
	conn, err := net.ListenPacket("udp", listenAddr)
	if err != nil {
		return fmt.Errorf("console: listen %s: %w", listenAddr, err)
	}
	defer conn.Close()
	log.Printf("console: listening for OSC on %s", conn.LocalAddr())

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, 65535)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("console: read: %w", err)
		}

		pkt, err := osc.ParsePacket(string(buf[:n]))
		if err != nil {
			log.Printf("console: bad packet from %s: %v", from, err)
			continue
		}
		printPacket(out, pkt)
	}
}

func printPacket(out io.Writer, pkt osc.Packet) {
	switch p := pkt.(type) {
	case *osc.Message:
		fmt.Fprintln(out, FormatMessage(p.Address, p.Arguments))
	case *osc.Bundle:
		for _, m := range p.Messages {
			fmt.Fprintln(out, FormatMessage(m.Address, m.Arguments))
		}
		for _, b := range p.Bundles {
			printPacket(out, b)
		}
	}
}

// RunConsoleMQTT prints the MQTT mirror of a node's messages. clientName
// selects the node; "+" follows every node on the broker.
func RunConsoleMQTT(ctx context.Context, broker, clientID, clientName string, out io.Writer) error {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("console: connected to MQTT broker at %s", broker)

	topic := clientName + "/#"
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var body struct {
			Args []interface{} `json:"args"`
		}
		if err := json.Unmarshal(msg.Payload(), &body); err != nil {
			log.Printf("console: %s unmarshal error: %v", msg.Topic(), err)
			return
		}
		fmt.Fprintln(out, FormatMessage("/"+msg.Topic(), body.Args))
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", topic)

	<-ctx.Done()
	log.Println("console: shutting down")
	return nil
}
