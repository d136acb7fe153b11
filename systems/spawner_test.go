package systems

import (
	"math/rand"
	"testing"
	"time"

	"github.com/pthm-cable/nightbats/clock"
	"github.com/pthm-cable/nightbats/policy"
)

type spawnRecorder struct {
	clk   *clock.Clock
	live  int
	times []time.Duration
}

func (r *spawnRecorder) count() int { return r.live }

func (r *spawnRecorder) spawn(policy.Settings) {
	r.live++
	r.times = append(r.times, r.clk.Now().Sub(epoch))
}

func newTestScheduler() (*SpawnScheduler, *spawnRecorder, *clock.Clock) {
	clk := clock.New(epoch)
	rec := &spawnRecorder{clk: clk}
	s := NewSpawnScheduler(clk, rand.New(rand.NewSource(3)), 3, 800*time.Millisecond, rec.count, rec.spawn)
	return s, rec, clk
}

func TestWarmupBurstTiming(t *testing.T) {
	s, rec, clk := newTestScheduler()
	s.Start(policy.SettingsFor(policy.Medium))

	clk.Advance(1600 * time.Millisecond)

	want := []time.Duration{0, 800 * time.Millisecond, 1600 * time.Millisecond}
	if len(rec.times) != len(want) {
		t.Fatalf("spawns = %d, want %d", len(rec.times), len(want))
	}
	for i := range want {
		if rec.times[i] != want[i] {
			t.Errorf("spawn %d at %v, want %v", i, rec.times[i], want[i])
		}
	}
	// Steady-state timer is armed after the burst
	if clk.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", clk.Pending())
	}
}

func TestWarmupLimitedByCap(t *testing.T) {
	s, rec, clk := newTestScheduler()
	settings := policy.SettingsFor(policy.Easy)
	settings.MaxBats = 2
	s.Start(settings)

	clk.Advance(5 * time.Second)

	if rec.live != 2 {
		t.Errorf("live = %d, want 2", rec.live)
	}
}

func TestSteadyStateIntervals(t *testing.T) {
	s, rec, clk := newTestScheduler()
	settings := policy.SettingsFor(policy.Hard)
	settings.MaxBats = 1000
	s.Start(settings)

	clk.Advance(10 * time.Minute)

	if len(rec.times) < 10 {
		t.Fatalf("only %d spawns in 10 minutes", len(rec.times))
	}
	for i := 3; i < len(rec.times); i++ {
		gap := rec.times[i] - rec.times[i-1]
		if gap < settings.SpawnIntervalMin || gap >= settings.SpawnIntervalMax {
			t.Errorf("gap %d = %v outside [%v, %v)", i, gap, settings.SpawnIntervalMin, settings.SpawnIntervalMax)
		}
	}
}

func TestFiringAtCapacityIsDropped(t *testing.T) {
	s, rec, clk := newTestScheduler()
	settings := policy.SettingsFor(policy.Hard)
	rec.live = settings.MaxBats

	skips := 0
	s.OnSkip = func() { skips++ }
	s.Start(settings)

	clk.Advance(time.Minute)

	if rec.live != settings.MaxBats {
		t.Errorf("live = %d, want %d", rec.live, settings.MaxBats)
	}
	if skips == 0 || s.Skipped() != skips {
		t.Errorf("skips = %d, Skipped() = %d", skips, s.Skipped())
	}

	// Dropped slots are not backlogged
	rec.live = 0
	before := len(rec.times)
	clk.Advance(settings.SpawnIntervalMin - time.Millisecond)
	if got := len(rec.times) - before; got > 1 {
		t.Errorf("spawns after freeing capacity = %d, want at most 1", got)
	}
}

func TestStopCancelsEverything(t *testing.T) {
	s, rec, clk := newTestScheduler()
	s.Start(policy.SettingsFor(policy.Medium))
	clk.Advance(100 * time.Millisecond) // first warm-up spawn only

	s.Stop()
	s.Stop()

	if clk.Pending() != 0 {
		t.Fatalf("Pending() after Stop = %d, want 0", clk.Pending())
	}
	before := rec.live
	clk.Advance(time.Hour)
	if rec.live != before {
		t.Errorf("spawned %d after Stop", rec.live-before)
	}
	if s.Running() {
		t.Error("Running() = true after Stop")
	}
}

func TestRestartReplaysWarmup(t *testing.T) {
	s, rec, clk := newTestScheduler()
	settings := policy.SettingsFor(policy.Medium)
	s.Start(settings)
	clk.Advance(2 * time.Second)

	rec.live = 0
	rec.times = nil
	s.Start(settings)
	clk.Advance(1600 * time.Millisecond)

	if len(rec.times) != 3 {
		t.Errorf("spawns after restart = %d, want 3", len(rec.times))
	}
	if clk.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", clk.Pending())
	}
}
