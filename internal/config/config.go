// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the node's hardware and runtime settings.
// The OSC destination (server address, port, client name) is not part of this
// file: it is persisted in the preference store and edited through provisioning.
type Config struct {
	// Persistence
	StorePath string

	// Logging
	LogLevel string

	// Use synthetic IMU and microphone sources instead of hardware.
	MockSensors bool

	// IMU Hardware
	IMUSPIDevice string
	IMUCSPin     string

	// IMU Sensor Ranges
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	IMUGyroRange byte

	// Microphone
	AudioDevice      string // raw S16_LE mono PCM source (device node or FIFO)
	AudioBlockSize   int    // samples per block
	AudioReadTimeout time.Duration

	// Button
	ButtonPin string

	// Display
	DisplayEnabled bool
	DisplayI2CBus  string

	// Network
	NetInterface     string
	NetDisconnectCmd string
	NetConnectCmd    string

	// Battery (power_supply sysfs directory)
	BatterySupply string

	// MQTT mirror (optional)
	MQTTBroker   string
	MQTTClientID string

	// Web Server
	WebServerPort int
}

// Defaults returns a Config with every optional field at its default.
func Defaults() *Config {
	return &Config{
		StorePath:        "./node_prefs.yaml",
		LogLevel:         "info",
		IMUAccelRange:    0,
		IMUGyroRange:     0,
		AudioBlockSize:   512,
		AudioReadTimeout: 100 * time.Millisecond,
		DisplayI2CBus:    "",
		NetInterface:     "wlan0",
		BatterySupply:    "/sys/class/power_supply/BAT0",
		MQTTClientID:     "sensor-node",
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads KEY=VALUE lines from r on top of Defaults.
func Parse(r io.Reader) (*Config, error) {
	cfg := Defaults()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	case "STORE_PATH":
		c.StorePath = value
	case "LOG_LEVEL":
		c.LogLevel = value
	case "MOCK_SENSORS":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid MOCK_SENSORS %q: %w", value, err)
		}
		c.MockSensors = b

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value

	// IMU Sensor Ranges
	case "IMU_ACCEL_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_ACCEL_RANGE must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", rangeVal)
		}
		c.IMUAccelRange = byte(rangeVal)
	case "IMU_GYRO_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_GYRO_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_GYRO_RANGE must be 0-3 (0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s), got %d", rangeVal)
		}
		c.IMUGyroRange = byte(rangeVal)

	// Microphone
	case "AUDIO_DEVICE":
		c.AudioDevice = value
	case "AUDIO_BLOCK_SIZE":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid AUDIO_BLOCK_SIZE %q: %w", value, err)
		}
		if n <= 0 {
			return fmt.Errorf("AUDIO_BLOCK_SIZE must be positive, got %d", n)
		}
		c.AudioBlockSize = n
	case "AUDIO_READ_TIMEOUT":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid AUDIO_READ_TIMEOUT %q: %w", value, err)
		}
		if ms <= 0 {
			return fmt.Errorf("AUDIO_READ_TIMEOUT must be positive, got %d", ms)
		}
		c.AudioReadTimeout = time.Duration(ms) * time.Millisecond

	// Button
	case "BUTTON_PIN":
		c.ButtonPin = value

	// Display
	case "DISPLAY_ENABLED":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_ENABLED %q: %w", value, err)
		}
		c.DisplayEnabled = b
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value

	// Network
	case "NET_INTERFACE":
		c.NetInterface = value
	case "NET_DISCONNECT_CMD":
		c.NetDisconnectCmd = value
	case "NET_CONNECT_CMD":
		c.NetConnectCmd = value

	case "BATTERY_SUPPLY":
		c.BatterySupply = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		if port < 0 || port > 65535 {
			return fmt.Errorf("WEB_SERVER_PORT must be 0-65535, got %d", port)
		}
		c.WebServerPort = port

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.StorePath == "" {
		return fmt.Errorf("STORE_PATH is required")
	}
	if c.MockSensors {
		return nil
	}
	if c.IMUSPIDevice == "" {
		return fmt.Errorf("IMU_SPI_DEVICE is required")
	}
	if c.IMUCSPin == "" {
		return fmt.Errorf("IMU_CS_PIN is required")
	}
	if c.AudioDevice == "" {
		return fmt.Errorf("AUDIO_DEVICE is required")
	}
	return nil
}
