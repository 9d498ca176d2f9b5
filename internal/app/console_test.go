package app

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/hypebeast/go-osc/osc"
)

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		address string
		args    []interface{}
		want    string
	}{
		{"/ccbt1/imu/acc", []interface{}{float32(0), float32(0.5), float32(1)}, "[ACC ] /ccbt1/imu/acc     0.000     0.500     1.000"},
		{"/ccbt1/status/battery", []interface{}{int32(80), true}, "[BAT ] /ccbt1/status/battery 80 true"},
		{"/other/thing", nil, "[MSG ] /other/thing"},
	}
	for _, tt := range tests {
		if got := FormatMessage(tt.address, tt.args); got != tt.want {
			t.Errorf("FormatMessage(%s) = %q, want %q", tt.address, got, tt.want)
		}
	}
}

func TestPrintBundle(t *testing.T) {
	b := osc.NewBundle(time.Now())
	b.Append(osc.NewMessage("/ccbt1/mic/volume", float32(98), float32(65)))
	b.Append(osc.NewMessage("/ccbt1/imu/rotation", float32(1), float32(2)))

	var out bytes.Buffer
	printPacket(&out, b)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("printed %q", out.String())
	}
	if !strings.HasPrefix(lines[0], "[MIC ]") || !strings.HasPrefix(lines[1], "[ROT ]") {
		t.Errorf("lines = %q", lines)
	}
}
