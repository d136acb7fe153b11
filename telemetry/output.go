package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/nightbats/config"
	"github.com/pthm-cable/nightbats/session"
)

// csvSink appends gocsv records to one file, writing the header once.
type csvSink struct {
	f             *os.File
	headerWritten bool
}

func openSink(dir, name string) (*csvSink, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvSink{f: f}, nil
}

func (s *csvSink) write(records any) error {
	if !s.headerWritten {
		s.headerWritten = true
		return gocsv.Marshal(records, s.f)
	}
	return gocsv.MarshalWithoutHeaders(records, s.f)
}

func (s *csvSink) Close() error {
	return s.f.Close()
}

// OutputManager writes run output as CSV files in one directory:
// telemetry.csv (window stats), sessions.csv (one row per finished session)
// and perf.csv.
type OutputManager struct {
	dir       string
	telemetry *csvSink
	sessions  *csvSink
	perf      *csvSink
}

// NewOutputManager creates the output directory and files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	var err error
	if om.telemetry, err = openSink(dir, "telemetry.csv"); err != nil {
		return nil, err
	}
	if om.sessions, err = openSink(dir, "sessions.csv"); err != nil {
		om.Close()
		return nil, err
	}
	if om.perf, err = openSink(dir, "perf.csv"); err != nil {
		om.Close()
		return nil, err
	}
	return om, nil
}

// WriteConfig saves the effective configuration as config.yaml.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry appends a window to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := om.telemetry.write([]WindowStats{stats}); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WriteSession appends a finished session to sessions.csv.
func (om *OutputManager) WriteSession(sum session.Summary) error {
	if om == nil {
		return nil
	}
	if err := om.sessions.write([]session.Summary{sum}); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// WritePerf appends a performance record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, simTimeSec float64) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(simTimeSec)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files and returns the first error.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvSink{om.telemetry, om.sessions, om.perf} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
