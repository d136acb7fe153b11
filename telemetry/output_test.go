package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/nightbats/config"
	"github.com/pthm-cable/nightbats/session"
)

func TestNilOutputManager(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v, want nil, nil", om, err)
	}
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("WriteTelemetry on nil: %v", err)
	}
	if err := om.WriteSession(session.Summary{}); err != nil {
		t.Errorf("WriteSession on nil: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
}

func TestOutputManagerWritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := om.WriteTelemetry(WindowStats{SimTimeSec: float64(i), Difficulty: "EASY"}); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
	}
	sum := session.Summary{SessionID: "abc", Difficulty: "HARD", Outcome: session.Won, Score: 150}
	if err := om.WriteSession(sum); err != nil {
		t.Fatalf("WriteSession: %v", err)
	}
	if err := om.WritePerf(PerfStats{}, 1.5); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if err := om.WriteConfig(config.Defaults()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	tests := []struct {
		file   string
		lines  int
		header string
	}{
		{"telemetry.csv", 4, "sim_time"},
		{"sessions.csv", 2, "session_id"},
		{"perf.csv", 2, "sim_time"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(dir, tt.file))
			if err != nil {
				t.Fatalf("reading: %v", err)
			}
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			if len(lines) != tt.lines {
				t.Errorf("got %d lines, want %d", len(lines), tt.lines)
			}
			if !strings.HasPrefix(lines[0], tt.header) {
				t.Errorf("header %q missing %q", lines[0], tt.header)
			}
		})
	}

	data, err := os.ReadFile(filepath.Join(dir, "sessions.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "abc,HARD,") {
		t.Errorf("sessions.csv = %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml: %v", err)
	}
}
