// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/sensor_node/internal/config"
	"github.com/relabs-tech/sensor_node/internal/display"
	"github.com/relabs-tech/sensor_node/internal/network"
)

// Startup link check: how long to wait for the uplink and how often to look.
const (
	StartupLinkTimeout  = 180 * time.Second
	StartupLinkInterval = time.Second
)

// RunNode opens the node's hardware (or mocks) described by cfg and runs it
// until ctx is done or a restart is requested.
func RunNode(ctx context.Context, cfg *config.Config) error {
	deps, closeAll, err := OpenDeps(cfg)
	if err != nil {
		return err
	}
	defer closeAll()

	return NewNode(deps).Run(ctx)
}

// Run brings the node up and runs every task until one of them asks for a
// restart or ctx is done.
func (n *Node) Run(ctx context.Context) error {
	if err := n.show(display.InitPage()); err != nil {
		log.Printf("node: display: %v", err)
	}

	if err := n.waitForLink(ctx); err != nil {
		return err
	}

	n.imuMu.Lock()
	err := n.motion.Initialize(ctx, false)
	n.imuMu.Unlock()
	if err != nil {
		return fmt.Errorf("node: imu init: %w", err)
	}

	page, _, _ := n.statusPage()
	if err := n.show(page); err != nil {
		log.Printf("node: display: %v", err)
	}

	log.WithFields(log.Fields{
		"destination": n.device.Destination(),
		"client":      n.device.ClientName,
	}).Info("node: starting tasks")

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range n.Tasks() {
		g.Go(func() error {
			log.WithField("task", t.Name).Debugf("node: task started, period %v", t.Period)
			return t.Run(gctx, n.clock)
		})
	}
	g.Go(func() error { return n.RunButton(gctx) })

	if n.cfg.WebServerPort > 0 {
		srv := &http.Server{
			Addr:    ":" + strconv.Itoa(n.cfg.WebServerPort),
			Handler: n.Handler(gctx),
		}
		g.Go(func() error {
			log.Printf("web: listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("web: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// waitForLink holds startup until the uplink is reachable. When it never
// comes up the node shows the failure and asks for a restart.
func (n *Node) waitForLink(ctx context.Context) error {
	if !n.link.Reachable() {
		if err := n.show(display.ConnectingPage(n.cfg.NetInterface)); err != nil {
			log.Printf("node: display: %v", err)
		}
		log.Printf("node: waiting up to %v for %s", StartupLinkTimeout, n.cfg.NetInterface)

		if !network.WaitReachable(ctx, n.link, StartupLinkTimeout, StartupLinkInterval) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Errorf("node: %s not reachable, restarting", n.cfg.NetInterface)
			if err := n.show(display.FailedPage()); err != nil {
				log.Printf("node: display: %v", err)
			}
			return ErrRestart
		}
	}

	info := n.link.Info()
	log.WithFields(log.Fields{"ip": info.IP, "mac": info.MAC}).Info("node: network connected")
	if err := n.show(display.ConnectedPage(info.IP)); err != nil {
		log.Printf("node: display: %v", err)
	}
	return nil
}
