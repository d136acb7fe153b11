package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one step of a frame.
type Phase uint8

const (
	PhaseInput     Phase = iota
	PhaseTimers          // clock advance: spawns and reaps
	PhaseSession         // restarts after a finished session
	PhaseTelemetry

	PhaseCount
)

// Phases returns every phase in frame order.
func Phases() []Phase {
	return []Phase{PhaseInput, PhaseTimers, PhaseSession, PhaseTelemetry}
}

// String returns the phase name used in logs and CSV headers.
func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseTimers:
		return "timers"
	case PhaseSession:
		return "session"
	case PhaseTelemetry:
		return "telemetry"
	default:
		return "unknown"
	}
}

// frameSample is the cost of one frame.
type frameSample struct {
	total  time.Duration
	phases [PhaseCount]time.Duration
}

// PerfCollector tracks wall-clock cost of frames over a rolling window.
// Samples live in a ring; Stats reads whichever are present.
type PerfCollector struct {
	ring  []frameSample
	next  int
	count int

	cur        frameSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	// Display frame pacing (graphics mode)
	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize frames.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{ring: make([]frameSample, windowSize)}
}

// StartTick begins timing a new frame.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.cur = frameSample{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = true
}

// EndTick closes the frame and stores its sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.count < len(p.ring) {
		p.count++
	}
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase < PhaseCount {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// RecordFrame marks a presented frame for FPS measurement.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	P95TickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	// Average cost of each phase and its share of the average frame (0-100)
	PhaseAvg [PhaseCount]time.Duration
	PhasePct [PhaseCount]float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the samples in the window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{FrameDuration: p.frame}
	if p.frame > 0 {
		stats.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return stats
	}

	var total time.Duration
	var phaseSum [PhaseCount]time.Duration
	ticksUS := make([]float64, 0, p.count)
	for _, s := range p.ring[:p.count] {
		total += s.total
		stats.MaxTickDuration = max(stats.MaxTickDuration, s.total)
		ticksUS = append(ticksUS, float64(s.total.Microseconds()))
		for i, d := range s.phases {
			phaseSum[i] += d
		}
	}

	n := time.Duration(p.count)
	stats.AvgTickDuration = total / n
	stats.P95TickDuration = time.Duration(Quantile(ticksUS, 0.95)) * time.Microsecond
	for i, sum := range phaseSum {
		stats.PhaseAvg[i] = sum / n
		if stats.AvgTickDuration > 0 {
			stats.PhasePct[i] = float64(stats.PhaseAvg[i]) / float64(stats.AvgTickDuration) * 100
		}
	}
	if stats.AvgTickDuration > 0 {
		stats.TicksPerSecond = float64(time.Second) / float64(stats.AvgTickDuration)
	}
	return stats
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	slog.Info("perf", "perf", s)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for _, ph := range Phases() {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	SimTimeSec   float64 `csv:"sim_time"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	P95TickUS    int64   `csv:"p95_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	InputPct     float64 `csv:"input_pct"`
	TimersPct    float64 `csv:"timers_pct"`
	SessionPct   float64 `csv:"session_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for a row stamped at simTimeSec.
func (s PerfStats) ToCSV(simTimeSec float64) PerfStatsCSV {
	return PerfStatsCSV{
		SimTimeSec:   simTimeSec,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		P95TickUS:    s.P95TickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		InputPct:     s.PhasePct[PhaseInput],
		TimersPct:    s.PhasePct[PhaseTimers],
		SessionPct:   s.PhasePct[PhaseSession],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
