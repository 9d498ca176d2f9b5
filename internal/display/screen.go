// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// Screen shows a page. Callers serialize access through the display lock.
type Screen interface {
	Show(p Page) error
	Close() error
}

// Panel geometry of the SSD1306.
const (
	Width  = 128
	Height = 64
)

// OLED drives an SSD1306 over I2C.
type OLED struct {
	bus i2c.BusCloser
	dev *ssd1306.Dev
}

// OpenOLED opens the I2C bus by name ("" for the first one) and initializes
// the panel.
func OpenOLED(busName string) (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("display: periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("display: open I2C bus %q: %w", busName, err)
	}

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("display: init ssd1306: %w", err)
	}
	log.Printf("display: ssd1306 initialized on bus %q", busName)

	return &OLED{bus: bus, dev: dev}, nil
}

func (o *OLED) Show(p Page) error {
	img := Render(p)
	return o.dev.Draw(o.dev.Bounds(), img, image.Point{})
}

func (o *OLED) Close() error {
	if err := o.dev.Halt(); err != nil {
		log.Printf("display: halt: %v", err)
	}
	return o.bus.Close()
}

// Render draws p into a 1-bit image. The header is drawn inverted on a
// filled bar so state screens stand out on a monochrome panel.
func Render(p Page) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	y := 13
	if p.Header != "" {
		for py := 0; py < 15; py++ {
			for px := 0; px < Width; px++ {
				img.SetBit(px, py, image1bit.On)
			}
		}
		drawer.Src = &image.Uniform{image1bit.Off}
		drawer.Dot = fixed.P(2, 12)
		drawer.DrawString(p.Header)
		drawer.Src = &image.Uniform{image1bit.On}
		y = 28
	}

	for i, line := range p.Lines {
		if i == MaxLines {
			break
		}
		drawer.Dot = fixed.P(0, y)
		drawer.DrawString(line)
		y += 12
	}
	return img
}

// LogScreen stands in for a panel on headless nodes: every page is logged.
type LogScreen struct {
	mu   sync.Mutex
	last Page
}

func (l *LogScreen) Show(p Page) error {
	l.mu.Lock()
	l.last = p
	l.mu.Unlock()
	log.WithField("screen", p.Header).Info("display: " + p.String())
	return nil
}

// Last returns the most recently shown page.
func (l *LogScreen) Last() Page {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

func (l *LogScreen) Close() error { return nil }
