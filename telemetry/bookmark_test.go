package telemetry

import (
	"testing"
)

func hasBookmark(bookmarks []Bookmark, want BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == want {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_HotStreak(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// History with 30% accuracy
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{SimTimeSec: float64(i * 10), Shots: 10, Hits: 3, HitRate: 0.3})
	}

	bookmarks := bd.Check(WindowStats{SimTimeSec: 50, Shots: 10, Hits: 8, HitRate: 0.8})
	if !hasBookmark(bookmarks, BookmarkHotStreak) {
		t.Error("expected hot_streak bookmark")
	}
}

func TestBookmarkDetector_HotStreakNeedsShots(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{Shots: 10, Hits: 3, HitRate: 0.3})
	}

	bookmarks := bd.Check(WindowStats{Shots: 2, Hits: 2, HitRate: 1})
	if hasBookmark(bookmarks, BookmarkHotStreak) {
		t.Error("hot_streak on two shots")
	}
}

func TestBookmarkDetector_Saturated(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(WindowStats{LiveBats: 5})

	if !hasBookmark(bd.Check(WindowStats{LiveBats: 8, Skipped: 2}), BookmarkSaturated) {
		t.Error("expected saturated bookmark on first capped window")
	}
	if hasBookmark(bd.Check(WindowStats{LiveBats: 8, Skipped: 1}), BookmarkSaturated) {
		t.Error("saturated repeated while still capped")
	}
}

func TestBookmarkDetector_SkyCleared(t *testing.T) {
	tests := []struct {
		name     string
		prevLive int
		live     int
		hits     int
		want     bool
	}{
		{"cleared by shooting", 4, 0, 4, true},
		{"expired away", 4, 0, 1, false},
		{"sky was quiet", 2, 0, 2, false},
		{"bats remain", 5, 1, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bd := NewBookmarkDetector(10)
			bd.Check(WindowStats{LiveBats: tt.prevLive})
			got := hasBookmark(bd.Check(WindowStats{LiveBats: tt.live, Hits: tt.hits}), BookmarkSkyCleared)
			if got != tt.want {
				t.Errorf("sky_cleared = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookmarkDetector_GhostHunter(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if !hasBookmark(bd.Check(WindowStats{GhostHits: 3}), BookmarkGhostHunter) {
		t.Error("expected ghost_hunter bookmark")
	}
	if hasBookmark(bd.Check(WindowStats{GhostHits: 2}), BookmarkGhostHunter) {
		t.Error("ghost_hunter below threshold")
	}
}

func TestBookmarkDetector_SteadyAimOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)

	count := 0
	for i := 0; i < 15; i++ {
		bookmarks := bd.Check(WindowStats{SimTimeSec: float64(i * 10), Shots: 10, Hits: 6, HitRate: 0.6})
		if hasBookmark(bookmarks, BookmarkSteadyAim) {
			count++
		}
	}
	if count != 1 {
		t.Errorf("steady_aim fired %d times, want 1", count)
	}
}

func TestBookmarkDetector_HistoryOrder(t *testing.T) {
	bd := NewBookmarkDetector(5)
	for i := 0; i < 7; i++ {
		bd.Check(WindowStats{SimTimeSec: float64(i)})
	}

	history := bd.getHistory()
	if len(history) != 5 {
		t.Fatalf("len(history) = %d, want 5", len(history))
	}
	for i, h := range history {
		if want := float64(i + 2); h.SimTimeSec != want {
			t.Errorf("history[%d].SimTimeSec = %v, want %v", i, h.SimTimeSec, want)
		}
	}
}
