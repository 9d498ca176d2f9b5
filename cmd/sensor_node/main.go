// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

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

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("invalid LOG_LEVEL: %v", err)
	}
	log.SetLevel(level)

	log.Println("starting sensor node (IMU, microphone → OSC)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = app.RunNode(ctx, cfg)
	switch {
	case errors.Is(err, app.ErrRestart):
		log.Warn("restart requested")
		stop()
		os.Exit(app.RestartExitCode)
	case err != nil:
		log.Fatalf("fatal: %v", err)
	}
	log.Println("sensor node stopped")
}
