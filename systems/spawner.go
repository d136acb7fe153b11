package systems

import (
	"math/rand"
	"time"

	"github.com/pthm-cable/nightbats/clock"
	"github.com/pthm-cable/nightbats/policy"
)

// SpawnScheduler decides when bats are created.
//
// On Start it schedules a warm-up burst of min(warmupCount, MaxBats) spawns
// at fixed spacing, then switches to a randomized cadence drawn from
// [SpawnIntervalMin, SpawnIntervalMax). Every firing checks the population
// cap; a firing at capacity is dropped, not queued.
type SpawnScheduler struct {
	clock         *clock.Clock
	rng           *rand.Rand
	warmupCount   int
	warmupSpacing time.Duration

	count func() int
	spawn func(policy.Settings)

	// OnSkip, if set, is called when a firing is dropped at capacity.
	OnSkip func()

	settings policy.Settings
	warmup   []*clock.Timer
	next     *clock.Timer
	running  bool
	skipped  int
}

// NewSpawnScheduler creates an idle scheduler. count reports the live
// population; spawn creates one bat.
func NewSpawnScheduler(clk *clock.Clock, rng *rand.Rand, warmupCount int, warmupSpacing time.Duration, count func() int, spawn func(policy.Settings)) *SpawnScheduler {
	return &SpawnScheduler{
		clock:         clk,
		rng:           rng,
		warmupCount:   warmupCount,
		warmupSpacing: warmupSpacing,
		count:         count,
		spawn:         spawn,
	}
}

// Start (re)starts the warm-up burst under s. Any pending timers are cancelled first.
func (s *SpawnScheduler) Start(settings policy.Settings) {
	s.Stop()
	s.settings = settings
	s.running = true

	n := min(s.warmupCount, settings.MaxBats)
	if n <= 0 {
		s.scheduleNext()
		return
	}

	s.warmup = make([]*clock.Timer, 0, n)
	for i := 0; i < n; i++ {
		last := i == n-1
		s.warmup = append(s.warmup, s.clock.AfterFunc(time.Duration(i)*s.warmupSpacing, func() {
			s.fire()
			if last && s.running {
				s.warmup = s.warmup[:0]
				s.scheduleNext()
			}
		}))
	}
}

// Stop cancels every pending spawn. Safe to call repeatedly.
func (s *SpawnScheduler) Stop() {
	for _, t := range s.warmup {
		t.Stop()
	}
	s.warmup = s.warmup[:0]
	if s.next != nil {
		s.next.Stop()
		s.next = nil
	}
	s.running = false
}

// Running reports whether the scheduler has pending work.
func (s *SpawnScheduler) Running() bool {
	return s.running
}

// Skipped returns the number of firings dropped at capacity since creation.
func (s *SpawnScheduler) Skipped() int {
	return s.skipped
}

// Settings returns the settings the scheduler was last started with.
func (s *SpawnScheduler) Settings() policy.Settings {
	return s.settings
}

func (s *SpawnScheduler) scheduleNext() {
	s.next = s.clock.AfterFunc(s.nextDelay(), func() {
		s.next = nil
		s.fire()
		if s.running {
			s.scheduleNext()
		}
	})
}

// nextDelay draws uniformly from [SpawnIntervalMin, SpawnIntervalMax).
func (s *SpawnScheduler) nextDelay() time.Duration {
	d := s.settings.SpawnIntervalMin
	if span := s.settings.SpawnIntervalMax - s.settings.SpawnIntervalMin; span > 0 {
		d += time.Duration(s.rng.Int63n(int64(span)))
	}
	return d
}

func (s *SpawnScheduler) fire() {
	if s.count() >= s.settings.MaxBats {
		s.skipped++
		if s.OnSkip != nil {
			s.OnSkip()
		}
		return
	}
	s.spawn(s.settings)
}
