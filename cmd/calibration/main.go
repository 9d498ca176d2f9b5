// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Forces a new IMU calibration: the device must lie flat and still for about
// a second. The offsets replace the stored ones and are used by the node from
// its next start.
//
// Run:
//
//	sudo ./calibration -config ./node_config.txt
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/sensor_node/internal/app"
	"github.com/relabs-tech/sensor_node/internal/config"
)

func main() {
	configPath := flag.String("config", "./node_config.txt", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("Place the device flat and keep it still...")
	cal, err := app.RunCalibration(ctx, cfg)
	if err != nil {
		log.Fatalf("calibration failed: %v", err)
	}

	fmt.Printf("gyro offset  (deg/s): %8.4f %8.4f %8.4f\n", cal.GyroOffset[0], cal.GyroOffset[1], cal.GyroOffset[2])
	fmt.Printf("accel offset (g):     %8.4f %8.4f %8.4f\n", cal.AccOffset[0], cal.AccOffset[1], cal.AccOffset[2])
	fmt.Printf("saved to %s\n", cfg.StorePath)
}
