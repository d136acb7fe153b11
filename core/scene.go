// Package core is the bat simulation: the live-bat scene with its spawn,
// expiry and hit-test timers, and the match that runs sessions against it.
// It has no graphics dependencies and is driven from a single goroutine.
package core

import (
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/nightbats/clock"
	"github.com/pthm-cable/nightbats/components"
	"github.com/pthm-cable/nightbats/config"
	"github.com/pthm-cable/nightbats/policy"
	"github.com/pthm-cable/nightbats/systems"
	"github.com/pthm-cable/nightbats/telemetry"
)

// SceneOptions configures a Scene.
type SceneOptions struct {
	Clock  *clock.Clock
	Rng    *rand.Rand
	Policy *policy.Policy
	Bounds systems.Bounds

	LifespanMin   time.Duration
	LifespanMax   time.Duration
	WarmupCount   int
	WarmupSpacing time.Duration
	ReapInterval  time.Duration
	BaseRadius    float32

	Difficulty policy.Difficulty
	Collector  *telemetry.Collector // optional
}

// SceneOptionsFromConfig fills SceneOptions from a loaded config.
func SceneOptionsFromConfig(cfg *config.Config, clk *clock.Clock, rng *rand.Rand) SceneOptions {
	return SceneOptions{
		Clock:         clk,
		Rng:           rng,
		Policy:        cfg.Derived.Policy,
		Bounds:        BoundsFromConfig(cfg),
		LifespanMin:   cfg.Derived.LifespanMin,
		LifespanMax:   cfg.Derived.LifespanMax,
		WarmupCount:   cfg.Spawn.WarmupCount,
		WarmupSpacing: cfg.Derived.WarmupSpacing,
		ReapInterval:  cfg.Derived.ReapInterval,
		BaseRadius:    cfg.Derived.BaseRadius32,
		Difficulty:    cfg.Settings.Difficulty,
	}
}

// BoundsFromConfig returns the play area described by cfg.
func BoundsFromConfig(cfg *config.Config) systems.Bounds {
	return systems.Bounds{
		Width:      cfg.Derived.ScreenW32,
		Height:     cfg.Derived.ScreenH32,
		EdgeMargin: cfg.Derived.EdgeMargin32,
	}
}

// Scene owns the live bats and every timer that acts on them.
//
// It is driven from a single goroutine: the clock's timers, TestHit and the
// activation and difficulty signals must not be called concurrently.
type Scene struct {
	world  *ecs.World
	mapper *ecs.Map3[components.Position, components.Bat, components.Lifespan]
	filter *ecs.Filter3[components.Position, components.Bat, components.Lifespan]
	byID   map[string]ecs.Entity

	clock     *clock.Clock
	policy    *policy.Policy
	factory   *systems.BatFactory
	spawner   *systems.SpawnScheduler
	reaper    *systems.LifespanReaper
	hitTester *systems.HitTester
	collector *telemetry.Collector

	reapInterval time.Duration
	reapTimer    *clock.Timer

	difficulty policy.Difficulty
	settings   policy.Settings
	active     bool
	live       int

	onBatHit func(points int)
}

// NewScene creates an inactive scene.
func NewScene(opts SceneOptions) *Scene {
	world := ecs.NewWorld()
	if opts.Policy == nil {
		opts.Policy = policy.Default()
	}
	if opts.Rng == nil {
		opts.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.ReapInterval <= 0 {
		opts.ReapInterval = 100 * time.Millisecond
	}

	s := &Scene{
		world:        world,
		mapper:       ecs.NewMap3[components.Position, components.Bat, components.Lifespan](world),
		filter:       ecs.NewFilter3[components.Position, components.Bat, components.Lifespan](world),
		byID:         make(map[string]ecs.Entity),
		clock:        opts.Clock,
		policy:       opts.Policy,
		collector:    opts.Collector,
		reapInterval: opts.ReapInterval,
		difficulty:   opts.Difficulty,
		settings:     opts.Policy.SettingsFor(opts.Difficulty),
	}

	s.factory = systems.NewBatFactory(opts.Rng, opts.Policy, opts.Bounds, opts.LifespanMin, opts.LifespanMax)
	s.spawner = systems.NewSpawnScheduler(opts.Clock, opts.Rng, opts.WarmupCount, opts.WarmupSpacing, s.LiveCount, s.spawnBat)
	s.spawner.OnSkip = func() {
		s.collector.RecordSkip()
		slog.Debug("spawn_skipped", "live", s.live, "max_bats", s.settings.MaxBats)
	}
	s.reaper = systems.NewLifespanReaper(world)
	s.hitTester = systems.NewHitTester(world, opts.Policy, opts.BaseRadius)

	return s
}

// OnBatHit sets the callback invoked once per successful hit with the bat's points.
func (s *Scene) OnBatHit(fn func(points int)) {
	s.onBatHit = fn
}

// SetCollector attaches or replaces the telemetry collector.
func (s *Scene) SetCollector(c *telemetry.Collector) {
	s.collector = c
}

// SetActive starts or stops the scene. Activation starts the warm-up burst
// from an empty scene; deactivation cancels every timer and clears all bats.
// Both directions are idempotent.
func (s *Scene) SetActive(active bool) {
	if active == s.active {
		return
	}
	s.active = active

	if active {
		s.clearBats()
		s.spawner.Start(s.settings)
		s.scheduleReap()
		slog.Info("scene_activated", "difficulty", s.difficulty.String(), "max_bats", s.settings.MaxBats)
		return
	}

	s.spawner.Stop()
	s.reapTimer.Stop()
	s.reapTimer = nil
	removed := s.clearBats()
	slog.Info("scene_deactivated", "cleared", removed)
}

// Active reports whether the scene is running.
func (s *Scene) Active() bool {
	return s.active
}

// SetDifficulty switches to the settings for d. While active, the scene is
// cleared and the warm-up burst restarts under the new settings.
func (s *Scene) SetDifficulty(d policy.Difficulty) {
	s.difficulty = d
	s.settings = s.policy.SettingsFor(d)

	if !s.active {
		return
	}
	s.clearBats()
	s.spawner.Start(s.settings)
	slog.Info("difficulty_changed", "difficulty", s.settings.Difficulty.String(), "max_bats", s.settings.MaxBats)
}

// Difficulty returns the selected difficulty.
func (s *Scene) Difficulty() policy.Difficulty {
	return s.difficulty
}

// Settings returns the resolved settings for the selected difficulty.
func (s *Scene) Settings() policy.Settings {
	return s.settings
}

// TestHit resolves a tap at (x, y). On a hit the bat is removed, the hit
// callback runs with its points, and the points are returned. An inactive
// or empty scene never hits.
func (s *Scene) TestHit(x, y float32) (int, bool) {
	if !s.active {
		return 0, false
	}
	s.collector.RecordShot()

	hit, ok := s.hitTester.Test(x, y, func(r systems.Removed) { s.removeBat(r) })
	if !ok {
		return 0, false
	}

	now := s.clock.Now()
	s.collector.RecordHit(hit.Bat.Type, hit.Bat.Points, hit.Distance, now.Sub(hit.Life.CreatedAt))
	slog.Debug("bat_hit",
		"id", hit.Bat.ID,
		"type", hit.Bat.Type.String(),
		"points", hit.Bat.Points,
		"distance", hit.Distance,
	)

	if s.onBatHit != nil {
		s.onBatHit(hit.Bat.Points)
	}
	return hit.Bat.Points, true
}

// LiveCount returns the number of live bats.
func (s *Scene) LiveCount() int {
	return s.live
}

// Bats returns a snapshot of the live bats in spawn order.
func (s *Scene) Bats() []components.BatView {
	views := make([]components.BatView, 0, s.live)
	query := s.filter.Query()
	for query.Next() {
		pos, bat, life := query.Get()
		views = append(views, components.NewBatView(pos, bat, life))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Seq < views[j].Seq })
	return views
}

// Contains reports whether a bat with id is live.
func (s *Scene) Contains(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// HitRadius returns the hit radius for a live bat.
func (s *Scene) HitRadius(v components.BatView) float32 {
	bat := components.Bat{Type: v.Type, Scale: v.Scale}
	return s.hitTester.Radius(&bat)
}

// Now returns the scene's current simulated time.
func (s *Scene) Now() time.Time {
	return s.clock.Now()
}

// SpawnSkips returns how many spawn firings were dropped at capacity.
func (s *Scene) SpawnSkips() int {
	return s.spawner.Skipped()
}

func (s *Scene) spawnBat(settings policy.Settings) {
	pos, bat, life := s.factory.Create(settings, s.clock.Now())
	e := s.mapper.NewEntity(&pos, &bat, &life)
	s.byID[bat.ID] = e
	s.live++

	s.collector.RecordSpawn(bat.Type)
	slog.Debug("bat_spawned",
		"id", bat.ID,
		"type", bat.Type.String(),
		"x", pos.X,
		"y", pos.Y,
		"scale", bat.Scale,
		"lifespan", life.Duration.String(),
		"live", s.live,
	)
}

func (s *Scene) scheduleReap() {
	s.reapTimer = s.clock.AfterFunc(s.reapInterval, func() {
		if !s.active {
			return
		}
		now := s.clock.Now()
		s.reaper.Sweep(now, func(r systems.Removed) {
			if !s.removeBat(r) {
				return
			}
			age := now.Sub(r.Life.CreatedAt)
			s.collector.RecordExpiry(age)
			slog.Debug("bat_expired", "id", r.Bat.ID, "type", r.Bat.Type.String(), "age", age.String())
		})
		s.scheduleReap()
	})
}

// removeBat takes one bat out of the world. Removing an absent bat is a no-op.
func (s *Scene) removeBat(r systems.Removed) bool {
	if !s.world.Alive(r.Entity) {
		return false
	}
	s.world.RemoveEntity(r.Entity)
	delete(s.byID, r.Bat.ID)
	s.live--
	return true
}

// clearBats removes every bat and returns how many were removed.
func (s *Scene) clearBats() int {
	// First pass: collect
	var all []ecs.Entity
	query := s.filter.Query()
	for query.Next() {
		all = append(all, query.Entity())
	}

	// Second pass: remove
	for _, e := range all {
		s.world.RemoveEntity(e)
	}
	clear(s.byID)
	s.live = 0
	return len(all)
}
