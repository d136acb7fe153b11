package core

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/nightbats/clock"
	"github.com/pthm-cable/nightbats/components"
	"github.com/pthm-cable/nightbats/config"
	"github.com/pthm-cable/nightbats/policy"
	"github.com/pthm-cable/nightbats/session"
	"github.com/pthm-cable/nightbats/telemetry"
)

// Match wires one scene to a run of sessions on a shared simulated clock.
// Difficulty comes from the settings store; a difficulty change aborts the
// running session and starts a fresh one.
//
// Like Scene, a Match is driven from one goroutine.
type Match struct {
	cfg         *config.Config
	clock       *clock.Clock
	scene       *Scene
	session     *session.Session
	store       *config.SettingsStore
	unsubscribe func()
	output      *telemetry.OutputManager

	sessions int
	onFinish func(session.Summary)
}

// MatchOptions configures a Match.
type MatchOptions struct {
	Seed      int64
	Start     time.Time                // simulated epoch
	Collector *telemetry.Collector     // optional
	Output    *telemetry.OutputManager // optional; receives one row per finished session
}

// NewMatch builds the scene for cfg and subscribes to store. Call Start to
// begin the first session.
func NewMatch(cfg *config.Config, store *config.SettingsStore, opts MatchOptions) *Match {
	if opts.Start.IsZero() {
		opts.Start = time.Now()
	}
	clk := clock.New(opts.Start)
	rng := rand.New(rand.NewSource(opts.Seed))

	sceneOpts := SceneOptionsFromConfig(cfg, clk, rng)
	sceneOpts.Difficulty = store.Get().Difficulty
	sceneOpts.Collector = opts.Collector

	m := &Match{
		cfg:    cfg,
		clock:  clk,
		scene:  NewScene(sceneOpts),
		store:  store,
		output: opts.Output,
	}
	m.unsubscribe = store.Subscribe(func(s config.Settings) {
		if s.Difficulty != m.scene.Difficulty() {
			m.changeDifficulty(s.Difficulty)
		}
	})
	return m
}

// OnFinish sets a callback run after each session ends.
func (m *Match) OnFinish(fn func(session.Summary)) {
	m.onFinish = fn
}

// Start begins a new session, aborting any session still running.
func (m *Match) Start() {
	if m.session != nil && !m.session.Finished() {
		m.session.Abort()
	}

	d := m.scene.Difficulty()
	s := session.New(m.clock, m.scene, session.RulesFromConfig(m.cfg, d), d)
	s.OnFinish(m.finished)
	m.scene.OnBatHit(s.OnBatHit)
	m.session = s
	m.sessions++
	s.Start()
}

func (m *Match) finished(sum session.Summary) {
	if err := m.output.WriteSession(sum); err != nil {
		slog.Error("failed to write session", "error", err)
	}
	if m.onFinish != nil {
		m.onFinish(sum)
	}
}

func (m *Match) changeDifficulty(d policy.Difficulty) {
	running := m.session != nil && !m.session.Finished()
	if running {
		m.session.Abort()
	}
	m.scene.SetDifficulty(d)
	slog.Info("difficulty_selected", "difficulty", d.String(), "restarted", running)
	if running {
		m.Start()
	}
}

// Step advances simulated time by d, running every timer that falls due.
func (m *Match) Step(d time.Duration) int {
	return m.clock.Advance(d)
}

// Tap shoots at (x, y).
func (m *Match) Tap(x, y float32) session.ShotResult {
	if m.session == nil {
		return session.ShotResult{}
	}
	return m.session.Tap(x, y)
}

// Fire shoots at the crosshair.
func (m *Match) Fire() session.ShotResult {
	if m.session == nil {
		return session.ShotResult{}
	}
	return m.session.Fire()
}

// Close aborts the running session and drops the settings subscription.
func (m *Match) Close() {
	if m.session != nil {
		m.session.Abort()
	}
	m.scene.SetActive(false)
	m.unsubscribe()
}

// Scene returns the bat scene.
func (m *Match) Scene() *Scene { return m.scene }

// Session returns the current session, or nil before Start.
func (m *Match) Session() *session.Session { return m.session }

// Clock returns the simulated clock.
func (m *Match) Clock() *clock.Clock { return m.clock }

// Settings returns the settings store.
func (m *Match) Settings() *config.SettingsStore { return m.store }

// Sessions returns how many sessions have been started.
func (m *Match) Sessions() int { return m.sessions }

// Snapshot is the published state of a match.
type Snapshot struct {
	Type       string               `json:"type"`
	SessionID  string               `json:"session_id"`
	Difficulty policy.Difficulty    `json:"difficulty"`
	Outcome    session.Outcome      `json:"outcome"`
	Score      int                  `json:"score"`
	Kills      int                  `json:"kills"`
	KillTarget int                  `json:"kill_target"`
	Stamina    float64              `json:"stamina"`
	MaxStamina float64              `json:"max_stamina"`
	TimeLeftMs int64                `json:"time_left_ms"`
	LiveBats   int                  `json:"live_bats"`
	MaxBats    int                  `json:"max_bats"`
	Bats       []components.BatView `json:"bats"`
}

// Snapshot captures the current state.
func (m *Match) Snapshot() Snapshot {
	snap := Snapshot{
		Type:       "snapshot",
		Difficulty: m.scene.Difficulty(),
		LiveBats:   m.scene.LiveCount(),
		MaxBats:    m.scene.Settings().MaxBats,
		Bats:       m.scene.Bats(),
	}
	if s := m.session; s != nil {
		snap.SessionID = s.ID()
		snap.Outcome = s.Outcome()
		snap.Score = s.Score()
		snap.Kills = s.Kills()
		snap.KillTarget = s.Rules().KillTarget
		snap.Stamina = s.Stamina()
		snap.MaxStamina = s.Rules().MaxStamina
		snap.TimeLeftMs = s.TimeLeft().Milliseconds()
	}
	return snap
}
