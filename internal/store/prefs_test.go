package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPrefsPersistAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	blob := []byte{0, 1, 2, 0xfe, 0xff}
	for _, err := range []error{
		p.PutBool("imu_calibration", "calibrated", true),
		p.PutBytes("imu_calibration", "gyroOffset", blob),
		p.PutString("osc", "oscServerIp", "10.0.0.2"),
		p.PutInt("osc", "oscServerPort", 9001),
	} {
		if err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	q, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !q.GetBool("imu_calibration", "calibrated", false) {
		t.Error("calibrated flag lost")
	}
	got, ok := q.GetBytes("imu_calibration", "gyroOffset")
	if !ok || !bytes.Equal(got, blob) {
		t.Errorf("GetBytes = %v, %v", got, ok)
	}
	if v := q.GetString("osc", "oscServerIp", ""); v != "10.0.0.2" {
		t.Errorf("GetString = %q", v)
	}
	if v := q.GetInt("osc", "oscServerPort", 0); v != 9001 {
		t.Errorf("GetInt = %d", v)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "imu_calibration:") {
		t.Errorf("file is not namespaced YAML:\n%s", raw)
	}
}

func TestPrefsDefaults(t *testing.T) {
	p, err := Open(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if p.GetBool("ns", "flag", true) != true {
		t.Error("GetBool default")
	}
	if p.GetInt("ns", "n", 7) != 7 {
		t.Error("GetInt default")
	}
	if p.GetString("ns", "s", "x") != "x" {
		t.Error("GetString default")
	}
	if _, ok := p.GetBytes("ns", "b"); ok {
		t.Error("GetBytes reported missing key as present")
	}

	if err := p.PutString("ns", "n", "not a number"); err != nil {
		t.Fatal(err)
	}
	if p.GetInt("ns", "n", 3) != 3 {
		t.Error("unparsable int did not fall back to default")
	}
}

func TestPrefsClearNamespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	p, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.PutString("osc", "clientName", "node7"); err != nil {
		t.Fatal(err)
	}
	if err := p.PutBool("imu_calibration", "calibrated", true); err != nil {
		t.Fatal(err)
	}
	if err := p.Clear("osc"); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	q, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if v := q.GetString("osc", "clientName", "default"); v != "default" {
		t.Errorf("cleared key still present: %q", v)
	}
	if !q.GetBool("imu_calibration", "calibrated", false) {
		t.Error("Clear removed another namespace")
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	if err := os.WriteFile(path, []byte("osc: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("Open accepted malformed YAML")
	}
}
