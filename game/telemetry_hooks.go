package game

import (
	"log/slog"
)

// flushTelemetry closes the stats window once it has elapsed in simulated time.
func (g *Game) flushTelemetry() {
	scene := g.match.Scene()
	now := scene.Now()
	if !g.collector.ShouldFlush(now) {
		return
	}

	stats := g.collector.Flush(now, scene.LiveCount(), scene.Difficulty())
	perfStats := g.perfCollector.Stats()

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}
	for _, b := range g.bookmarks.Check(stats) {
		b.LogBookmark()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.SimTimeSec); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
