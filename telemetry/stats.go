// Package telemetry collects windowed gameplay statistics and writes them
// to structured logs and CSV files.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a simulated-time window.
type WindowStats struct {
	WindowStart float64 `csv:"-"`
	SimTimeSec  float64 `csv:"sim_time"`
	Difficulty  string  `csv:"difficulty"`

	// Population at window end
	LiveBats int `csv:"live_bats"`

	// Spawning
	Spawns      int `csv:"spawns"`
	SmallSpawns int `csv:"small_spawns"`
	LargeSpawns int `csv:"large_spawns"`
	GhostSpawns int `csv:"ghost_spawns"`
	Skipped     int `csv:"skipped_at_cap"`
	Expired     int `csv:"expired"`

	// Shooting
	Shots     int     `csv:"shots"`
	Hits      int     `csv:"hits"`
	Misses    int     `csv:"misses"`
	HitRate   float64 `csv:"hit_rate"`
	Points    int     `csv:"points"`
	SmallHits int     `csv:"small_hits"`
	LargeHits int     `csv:"large_hits"`
	GhostHits int     `csv:"ghost_hits"`

	// Distance from tap to bat centre on hits (px)
	HitDistMean float64 `csv:"hit_dist_mean"`
	HitDistP50  float64 `csv:"hit_dist_p50"`
	HitDistP90  float64 `csv:"hit_dist_p90"`

	// Time from spawn to kill (s)
	TTKMean float64 `csv:"ttk_mean"`
	TTKStd  float64 `csv:"ttk_std"`
	TTKP50  float64 `csv:"ttk_p50"`
	TTKP90  float64 `csv:"ttk_p90"`

	ExpiredLifeMean float64 `csv:"expired_life_mean"`
}

// Quantile returns the empirical p-quantile of values. Returns 0 if empty.
func Quantile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeStats calculates mean, median and 90th percentile.
func ComputeStats(values []float64) (mean, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	return mean, p50, p90
}

// StdDev returns the sample standard deviation, or 0 for fewer than two values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("difficulty", s.Difficulty),
		slog.Int("live_bats", s.LiveBats),
		slog.Int("spawns", s.Spawns),
		slog.Int("small_spawns", s.SmallSpawns),
		slog.Int("large_spawns", s.LargeSpawns),
		slog.Int("ghost_spawns", s.GhostSpawns),
		slog.Int("skipped_at_cap", s.Skipped),
		slog.Int("expired", s.Expired),
		slog.Int("shots", s.Shots),
		slog.Int("hits", s.Hits),
		slog.Int("misses", s.Misses),
		slog.Float64("hit_rate", s.HitRate),
		slog.Int("points", s.Points),
		slog.Float64("hit_dist_mean", s.HitDistMean),
		slog.Float64("hit_dist_p90", s.HitDistP90),
		slog.Float64("ttk_mean", s.TTKMean),
		slog.Float64("ttk_std", s.TTKStd),
		slog.Float64("ttk_p50", s.TTKP50),
		slog.Float64("expired_life_mean", s.ExpiredLifeMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
