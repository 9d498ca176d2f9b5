// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package network

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Link is the node's uplink as seen by the health check.
type Link interface {
	Reachable() bool
	Disconnect(ctx context.Context) error
	Reconnect(ctx context.Context) error
	Info() Info
}

// Info identifies the node on the network.
type Info struct {
	IP  string `json:"ip"`
	MAC string `json:"mac"`
}

// Interface is a Link backed by a host network interface. Disconnect and
// Reconnect run the configured shell commands (e.g. "nmcli dev disconnect wlan0").
type Interface struct {
	Name          string
	DisconnectCmd string
	ConnectCmd    string

	lookup func(name string) (*net.Interface, error)
	addrs  func(iface *net.Interface) ([]net.Addr, error)
}

// NewInterface watches the interface called name.
func NewInterface(name, disconnectCmd, connectCmd string) *Interface {
	return &Interface{
		Name:          name,
		DisconnectCmd: disconnectCmd,
		ConnectCmd:    connectCmd,
		lookup:        net.InterfaceByName,
		addrs:         func(i *net.Interface) ([]net.Addr, error) { return i.Addrs() },
	}
}

// Reachable reports whether the interface is up with an IPv4 address.
func (l *Interface) Reachable() bool {
	iface, err := l.lookup(l.Name)
	if err != nil {
		return false
	}
	if iface.Flags&net.FlagUp == 0 {
		return false
	}
	return l.ipv4(iface) != ""
}

func (l *Interface) ipv4(iface *net.Interface) string {
	addrs, err := l.addrs(iface)
	if err != nil {
		return ""
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil && !v4.IsLoopback() {
			return v4.String()
		}
	}
	return ""
}

func (l *Interface) Info() Info {
	iface, err := l.lookup(l.Name)
	if err != nil {
		return Info{}
	}
	return Info{IP: l.ipv4(iface), MAC: iface.HardwareAddr.String()}
}

func (l *Interface) Disconnect(ctx context.Context) error {
	return run(ctx, "disconnect", l.DisconnectCmd)
}

func (l *Interface) Reconnect(ctx context.Context) error {
	return run(ctx, "reconnect", l.ConnectCmd)
}

// commandTimeout bounds a single disconnect or reconnect command.
const commandTimeout = 30 * time.Second

func run(ctx context.Context, op, command string) error {
	if strings.TrimSpace(command) == "" {
		log.Debugf("network: no %s command configured", op)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "sh", "-c", command).CombinedOutput()
	if err != nil {
		return fmt.Errorf("network: %s %q: %w (%s)", op, command, err, strings.TrimSpace(string(out)))
	}
	log.Printf("network: %s ok", op)
	return nil
}

// WaitReachable polls l every interval until it is reachable, the timeout
// elapses or ctx is done. It reports whether the link came up.
func WaitReachable(ctx context.Context, l Link, timeout, interval time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if l.Reachable() {
			return true
		}
		select {
		case <-ctx.Done():
			return l.Reachable()
		case <-ticker.C:
		}
	}
}
