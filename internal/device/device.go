// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package device

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/relabs-tech/sensor_node/internal/store"
)

// Preference namespace and keys of the OSC destination.
const (
	Namespace  = "osc"
	keyAddress = "oscServerIp"
	keyPort    = "oscServerPort"
	keyName    = "clientName"
)

// Factory defaults used until provisioning stores something else.
const (
	DefaultServerAddress = "192.168.100.10"
	DefaultServerPort    = 9000
	DefaultClientName    = "ccbt1"
)

var (
	// clientNamePattern keeps the name a single OSC path segment with no
	// pattern-matching characters.
	clientNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	hostLabelPattern  = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)
)

// Config is where the node sends its OSC messages and how it names itself.
type Config struct {
	ServerAddress string `json:"server_address"`
	ServerPort    int    `json:"server_port"`
	ClientName    string `json:"client_name"`
}

// Load reads the destination from prefs, falling back to the factory defaults.
func Load(p *store.Prefs) Config {
	return Config{
		ServerAddress: p.GetString(Namespace, keyAddress, DefaultServerAddress),
		ServerPort:    p.GetInt(Namespace, keyPort, DefaultServerPort),
		ClientName:    p.GetString(Namespace, keyName, DefaultClientName),
	}
}

// Save validates c and persists it.
func Save(p *store.Prefs, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := p.PutString(Namespace, keyAddress, c.ServerAddress); err != nil {
		return err
	}
	if err := p.PutInt(Namespace, keyPort, c.ServerPort); err != nil {
		return err
	}
	return p.PutString(Namespace, keyName, c.ClientName)
}

// Reset drops the stored destination so the next boot uses the defaults.
func Reset(p *store.Prefs) error {
	return p.Clear(Namespace)
}

// Validate checks the fields a sender needs.
func (c Config) Validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("device: server address is required")
	}
	if !validHost(c.ServerAddress) {
		return fmt.Errorf("device: server address %q is not an IP address or host name", c.ServerAddress)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("device: server port must be 1-65535, got %d", c.ServerPort)
	}
	if c.ClientName == "" {
		return fmt.Errorf("device: client name is required")
	}
	if !clientNamePattern.MatchString(c.ClientName) {
		return fmt.Errorf("device: client name %q may only contain letters, digits, '-' and '_'", c.ClientName)
	}
	return nil
}

func validHost(h string) bool {
	if net.ParseIP(h) != nil {
		return true
	}
	if len(h) > 253 {
		return false
	}
	for _, label := range strings.Split(strings.TrimSuffix(h, "."), ".") {
		if !hostLabelPattern.MatchString(label) {
			return false
		}
	}
	return true
}

// Destination returns host:port of the OSC server.
func (c Config) Destination() string {
	return net.JoinHostPort(c.ServerAddress, strconv.Itoa(c.ServerPort))
}

// Address builds an outbound OSC address, e.g. Address("imu/acc") = "/<name>/imu/acc".
func (c Config) Address(path string) string {
	return "/" + c.ClientName + "/" + path
}
