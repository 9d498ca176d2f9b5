// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/sensor_node/internal/app"
)

func main() {
	listen := flag.String("listen", ":9000", "UDP address to receive OSC on")
	broker := flag.String("mqtt", "", "read the MQTT mirror from this broker instead of OSC")
	node := flag.String("node", "+", "client name to follow on the MQTT mirror")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if *broker != "" {
		log.Println("starting sensor node console (MQTT subscriber)")
		err = app.RunConsoleMQTT(ctx, *broker, "sensor-node-console", *node, os.Stdout)
	} else {
		log.Println("starting sensor node console (OSC listener)")
		err = app.RunConsole(ctx, *listen, os.Stdout)
	}
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
