// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"strings"
)

// Page is one full screen: an optional header word (the state the color
// stands for on a color panel) and up to MaxLines lines of text.
type Page struct {
	Header string
	Lines  []string
}

// MaxLines fits a 64 px high panel with a 7x13 font and a header row.
const MaxLines = 4

func (p Page) String() string {
	parts := make([]string, 0, len(p.Lines)+1)
	if p.Header != "" {
		parts = append(parts, "["+p.Header+"]")
	}
	parts = append(parts, p.Lines...)
	return strings.Join(parts, " | ")
}

// Status is everything the status page shows.
type Status struct {
	IP         string
	MAC        string
	ClientName string
	Port       int
	Battery    int // percent, negative when no reading exists
	Charging   bool
}

func InitPage() Page {
	return Page{Lines: []string{"Initializing..."}}
}

func ConnectingPage(iface string) Page {
	return Page{Header: "CONNECTING", Lines: []string{"Waiting for", "network on " + iface}}
}

func ConnectedPage(ip string) Page {
	return Page{Header: "CONNECTED", Lines: []string{ip}}
}

func SavedPage() Page {
	return Page{Lines: []string{"> Setting saved.", "Applies on", "next boot."}}
}

func FailedPage() Page {
	return Page{Header: "FAILED", Lines: []string{"Connection failed", "Restarting..."}}
}

func StatusPage(s Status) Page {
	charging := "No"
	if s.Charging {
		charging = "Yes"
	}
	battery := fmt.Sprintf("BAT %d%% Chg %s", s.Battery, charging)
	if s.Battery < 0 {
		battery = "BAT --"
	}
	return Page{
		Header: s.IP,
		Lines: []string{
			s.MAC,
			fmt.Sprintf("%s:%d", s.ClientName, s.Port),
			battery,
		},
	}
}

func ResetConfirmPage() Page {
	return Page{Header: "RESET?", Lines: []string{"Reset settings?", "Press button", "within 5 s"}}
}
