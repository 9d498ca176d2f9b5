package display

import (
	"strings"
	"testing"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func lit(img *image1bit.VerticalLSB, y0, y1 int) int {
	n := 0
	for y := y0; y < y1; y++ {
		for x := 0; x < Width; x++ {
			if img.BitAt(x, y) == image1bit.On {
				n++
			}
		}
	}
	return n
}

func TestRenderBlankPage(t *testing.T) {
	img := Render(Page{})
	if n := lit(img, 0, Height); n != 0 {
		t.Errorf("empty page lit %d pixels", n)
	}
}

func TestRenderHeaderBar(t *testing.T) {
	img := Render(FailedPage())

	// The bar is mostly on, with the header text punched out of it.
	bar := lit(img, 0, 15)
	if bar == Width*15 || bar < Width*15/2 {
		t.Errorf("header bar has %d lit pixels", bar)
	}
	if lit(img, 15, Height) == 0 {
		t.Error("no body text drawn")
	}
}

func TestStatusPage(t *testing.T) {
	p := StatusPage(Status{
		IP:         "192.168.100.11",
		MAC:        "aa:bb:cc:dd:ee:ff",
		ClientName: "ccbt1",
		Port:       9000,
		Battery:    76,
		Charging:   true,
	})
	s := p.String()
	for _, want := range []string{"192.168.100.11", "aa:bb:cc:dd:ee:ff", "ccbt1:9000", "BAT 76%", "Chg Yes"} {
		if !strings.Contains(s, want) {
			t.Errorf("status page %q missing %q", s, want)
		}
	}
	if len(p.Lines) > MaxLines {
		t.Errorf("status page has %d lines", len(p.Lines))
	}
}

func TestStatusPageWithoutBattery(t *testing.T) {
	p := StatusPage(Status{IP: "192.168.100.11", ClientName: "ccbt1", Port: 9000, Battery: -1})
	if got := p.Lines[2]; got != "BAT --" {
		t.Errorf("battery line = %q, want %q", got, "BAT --")
	}
}

func TestLogScreenKeepsLast(t *testing.T) {
	var l LogScreen
	l.Show(ConnectingPage("wlan0"))
	l.Show(ResetConfirmPage())
	if got := l.Last().Header; got != "RESET?" {
		t.Errorf("last header = %q", got)
	}
}
