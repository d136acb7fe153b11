package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHotStreak   BookmarkType = "hot_streak"
	BookmarkSaturated   BookmarkType = "saturated"
	BookmarkGhostHunter BookmarkType = "ghost_hunter"
	BookmarkSkyCleared  BookmarkType = "sky_cleared"
	BookmarkSteadyAim   BookmarkType = "steady_aim"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType
	SimTimeSec  float64
	Description string
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"sim_time", b.SimTimeSec,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments in play from window stats.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	steadyWindows int // consecutive windows with consistent accuracy
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for steady aim detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		for _, check := range []func(WindowStats) *Bookmark{
			bd.checkHotStreak,
			bd.checkSaturated,
			bd.checkSkyCleared,
			bd.checkSteadyAim,
		} {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}

	// Needs no history
	if b := checkGhostHunter(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the stored windows oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	ordered := make([]WindowStats, 0, bd.historySize)
	ordered = append(ordered, bd.history[bd.historyIdx:]...)
	return append(ordered, bd.history[:bd.historyIdx]...)
}

// previous returns the most recently added window.
func (bd *BookmarkDetector) previous() WindowStats {
	i := bd.historyIdx - 1
	if i < 0 {
		i = bd.historySize - 1
	}
	return bd.history[i]
}

// checkHotStreak fires when accuracy is well above the rolling average.
func (bd *BookmarkDetector) checkHotStreak(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.Shots < 5 {
		return nil
	}

	var shots, hits int
	for _, h := range history {
		shots += h.Shots
		hits += h.Hits
	}
	if shots == 0 || hits == 0 {
		return nil
	}

	avg := float64(hits) / float64(shots)
	if stats.HitRate > avg*1.5 && stats.HitRate >= 0.5 {
		return &Bookmark{
			Type:        BookmarkHotStreak,
			SimTimeSec:  stats.SimTimeSec,
			Description: fmt.Sprintf("Hit rate %.2f is %.1fx average (%.2f)", stats.HitRate, stats.HitRate/avg, avg),
		}
	}
	return nil
}

// checkSaturated fires on the first window in which spawns hit the cap.
func (bd *BookmarkDetector) checkSaturated(stats WindowStats) *Bookmark {
	if stats.Skipped == 0 || bd.previous().Skipped > 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSaturated,
		SimTimeSec:  stats.SimTimeSec,
		Description: fmt.Sprintf("Scene full at %d bats, %d spawns skipped", stats.LiveBats, stats.Skipped),
	}
}

// checkSkyCleared fires when the player shoots a busy sky empty.
func (bd *BookmarkDetector) checkSkyCleared(stats WindowStats) *Bookmark {
	prev := bd.previous()
	if stats.LiveBats != 0 || prev.LiveBats < 3 || stats.Hits < prev.LiveBats {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSkyCleared,
		SimTimeSec:  stats.SimTimeSec,
		Description: fmt.Sprintf("Cleared %d bats with %d hits", prev.LiveBats, stats.Hits),
	}
}

func checkGhostHunter(stats WindowStats) *Bookmark {
	if stats.GhostHits < 3 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkGhostHunter,
		SimTimeSec:  stats.SimTimeSec,
		Description: fmt.Sprintf("%d ghost bats hit in one window", stats.GhostHits),
	}
}

// checkSteadyAim fires once accuracy has held steady for five windows.
func (bd *BookmarkDetector) checkSteadyAim(stats WindowStats) *Bookmark {
	if stats.Shots < 5 {
		bd.steadyWindows = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	var sum float64
	for _, h := range recent {
		sum += h.HitRate
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := h.HitRate - mean
		variance += d * d
	}
	variance /= 4

	// Coefficient of variation under 20%
	if mean > 0 && variance/(mean*mean) < 0.04 {
		bd.steadyWindows++
	} else {
		bd.steadyWindows = 0
	}

	if bd.steadyWindows == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkSteadyAim,
			SimTimeSec:  stats.SimTimeSec,
			Description: fmt.Sprintf("Hit rate steady around %.2f over 5+ windows", mean),
		}
	}
	return nil
}
