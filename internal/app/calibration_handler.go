// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/sensor_node/internal/imu"
)

// WSMessage is sent by the calibration page.
type WSMessage struct {
	Action string `json:"action"` // start, cancel
}

// WSResponse is sent back to the calibration page.
type WSResponse struct {
	Type    string       `json:"type"` // phase, complete, error
	Phase   string       `json:"phase,omitempty"`
	Results *CalResponse `json:"results,omitempty"`
	Message string       `json:"message,omitempty"`
}

// CalResponse reports the offsets now in use.
type CalResponse struct {
	GyroOffset imu.Vec3 `json:"gyro_offset"`
	AccOffset  imu.Vec3 `json:"acc_offset"`
}

// serveCalibration recalibrates the running node on request. Sampling pauses
// while the stationary samples are taken; publishers keep sending the last
// snapshot.
func (n *Node) serveCalibration(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("calibration: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			log.Debugf("calibration: websocket read error: %v", err)
			return
		}

		switch msg.Action {
		case "start":
			conn.WriteJSON(WSResponse{Type: "phase", Phase: "stationary"})
			log.Println("calibration: started from web, keep the device still")

			cal, err := n.recalibrate(r.Context())
			if err != nil {
				log.Printf("calibration: %v", err)
				conn.WriteJSON(WSResponse{Type: "error", Message: err.Error()})
				continue
			}
			conn.WriteJSON(WSResponse{
				Type:    "complete",
				Results: &CalResponse{GyroOffset: cal.GyroOffset, AccOffset: cal.AccOffset},
			})

		case "cancel":
			log.Println("calibration: cancelled by user")
			return

		default:
			conn.WriteJSON(WSResponse{Type: "error", Message: "unknown action " + msg.Action})
		}
	}
}

// recalibrate measures and stores new offsets while holding the IMU reader,
// then swaps them in under the IMU lock.
func (n *Node) recalibrate(ctx context.Context) (imu.Calibration, error) {
	n.imuReadMu.Lock()
	defer n.imuReadMu.Unlock()

	cal, err := n.motion.Recalibrate(ctx)
	if err != nil {
		return imu.Calibration{}, err
	}
	seed, err := n.motion.SeedReading()
	if err != nil {
		return imu.Calibration{}, err
	}

	n.imuMu.Lock()
	n.motion.Reseed(cal, seed)
	n.imuMu.Unlock()
	return cal, nil
}
