// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/sensor_node/internal/audio"
	"github.com/relabs-tech/sensor_node/internal/device"
	"github.com/relabs-tech/sensor_node/internal/display"
	"github.com/relabs-tech/sensor_node/internal/motion"
	"github.com/relabs-tech/sensor_node/internal/network"
)

// LiveInterval is the update period of /ws/live.
const LiveInterval = 100 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local network tool
	},
}

// Status is the node's current state as served by /api/status and /ws/live.
type Status struct {
	IMU     motion.Snapshot `json:"imu"`
	Audio   audio.Level     `json:"audio"`
	Device  device.Config   `json:"device"`
	Network network.Info    `json:"network"`
}

// Status copies the latest readings, taking each lock only for its copy.
func (n *Node) Status() Status {
	return Status{
		IMU:     n.MotionSnapshot(),
		Audio:   n.AudioLevel(),
		Device:  n.device,
		Network: n.link.Info(),
	}
}

// Handler serves the local status API. Websocket streams end when ctx is done.
func (n *Node) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, n.Status())
	})

	// Stored destination; a change applies on the next boot.
	mux.HandleFunc("GET /api/device", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, device.Load(n.prefs))
	})

	mux.HandleFunc("POST /api/device", func(w http.ResponseWriter, r *http.Request) {
		var c device.Config
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := device.Save(n.prefs, c); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.WithFields(log.Fields{
			"destination": c.Destination(),
			"client":      c.ClientName,
		}).Info("web: device settings saved")

		if err := n.show(display.SavedPage()); err != nil {
			log.Printf("web: display: %v", err)
		}
		writeJSON(w, http.StatusOK, c)
	})

	mux.HandleFunc("GET /ws/live", func(w http.ResponseWriter, r *http.Request) {
		n.serveLive(ctx, w, r)
	})
	mux.HandleFunc("GET /ws/calibrate", n.serveCalibration)

	return mux
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

func (n *Node) serveLive(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Drain client frames so close messages are noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(LiveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case <-ticker.C:
			if err := conn.WriteJSON(n.Status()); err != nil {
				log.Debugf("web: live stream ended: %v", err)
				return
			}
		}
	}
}
