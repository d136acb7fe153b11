// Package session implements the game rules around the bat scene: score,
// countdown, stamina and the win/lose transitions.
package session

import (
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/nightbats/clock"
	"github.com/pthm-cable/nightbats/config"
	"github.com/pthm-cable/nightbats/policy"
)

// Core is the part of the bat scene a session drives.
type Core interface {
	SetActive(active bool)
	TestHit(x, y float32) (points int, hit bool)
}

// Outcome is the state of a session.
type Outcome uint8

const (
	Playing Outcome = iota
	Won
	LostStamina
	LostTime
	Aborted
)

// String returns the display name for an Outcome.
func (o Outcome) String() string {
	switch o {
	case Playing:
		return "playing"
	case Won:
		return "won"
	case LostStamina:
		return "lost_stamina"
	case LostTime:
		return "lost_time"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Rules are the per-session counters' limits.
type Rules struct {
	Duration    time.Duration
	MaxStamina  float64
	ShotCost    float64
	MissPenalty float64 // extra stamina lost on a miss
	RegenPerSec float64
	KillTarget  int

	// Fixed gun sight used by Fire
	CrosshairX, CrosshairY float32
}

// RulesFromConfig builds the rules for difficulty d.
func RulesFromConfig(cfg *config.Config, d policy.Difficulty) Rules {
	return Rules{
		Duration:    time.Duration(cfg.Session.DurationSec * float64(time.Second)),
		MaxStamina:  cfg.Session.MaxStamina,
		ShotCost:    cfg.Session.ShotCost,
		MissPenalty: cfg.Session.MissPenalty,
		RegenPerSec: cfg.Session.StaminaRegenPerSec,
		KillTarget:  cfg.Derived.Policy.SettingsFor(d).KillTarget,
		CrosshairX:  cfg.Derived.CrosshairX,
		CrosshairY:  cfg.Derived.CrosshairY,
	}
}

// ShotResult reports the effect of one tap or fire.
type ShotResult struct {
	Accepted bool // false once the session is over
	Hit      bool
	Points   int
	Stamina  float64
	Outcome  Outcome
}

// Session is one timed round against a Core.
type Session struct {
	id         string
	clock      *clock.Clock
	core       Core
	rules      Rules
	difficulty policy.Difficulty

	startedAt time.Time
	endedAt   time.Time
	deadline  *clock.Timer
	started   bool

	score   int
	kills   int
	shots   int
	hits    int
	stamina float64
	regenAt time.Time // stamina is current as of this instant

	outcome  Outcome
	onFinish func(Summary)
}

// New creates a session. Call Start to activate the core and the countdown.
func New(clk *clock.Clock, core Core, rules Rules, d policy.Difficulty) *Session {
	return &Session{
		id:         uuid.New().String(),
		clock:      clk,
		core:       core,
		rules:      rules,
		difficulty: d,
		stamina:    rules.MaxStamina,
	}
}

// OnFinish sets a callback run once when the session ends.
func (s *Session) OnFinish(fn func(Summary)) {
	s.onFinish = fn
}

// Start activates the core and arms the countdown. Repeated calls are no-ops.
func (s *Session) Start() {
	if s.started {
		return
	}
	s.started = true
	s.startedAt = s.clock.Now()
	s.regenAt = s.startedAt
	s.core.SetActive(true)
	s.deadline = s.clock.AfterFunc(s.rules.Duration, func() {
		s.finish(LostTime)
	})

	slog.Info("session_started",
		"session", s.id,
		"difficulty", s.difficulty.String(),
		"kill_target", s.rules.KillTarget,
		"duration", s.rules.Duration.String(),
	)
}

// OnBatHit credits a kill. The scene calls it once per successful hit.
func (s *Session) OnBatHit(points int) {
	if s.outcome != Playing {
		return
	}
	s.score += points
	s.kills++
	s.hits++
	if s.rules.KillTarget > 0 && s.kills >= s.rules.KillTarget {
		s.finish(Won)
	}
}

// Fire shoots at the fixed crosshair.
func (s *Session) Fire() ShotResult {
	return s.Tap(s.rules.CrosshairX, s.rules.CrosshairY)
}

// Tap shoots at screen coordinates (x, y).
func (s *Session) Tap(x, y float32) ShotResult {
	if !s.started || s.outcome != Playing {
		return ShotResult{Stamina: s.Stamina(), Outcome: s.outcome}
	}

	s.regen()
	s.stamina = math.Max(0, s.stamina-s.rules.ShotCost)
	s.shots++

	before := s.score
	// The scene credits hits through OnBatHit, which may end the session.
	_, hit := s.core.TestHit(x, y)
	if !hit {
		s.stamina = math.Max(0, s.stamina-s.rules.MissPenalty)
	}

	if s.outcome == Playing && s.stamina <= 0 {
		s.finish(LostStamina)
	}

	return ShotResult{
		Accepted: true,
		Hit:      hit,
		Points:   s.score - before,
		Stamina:  s.stamina,
		Outcome:  s.outcome,
	}
}

// Abort ends the session without a result, e.g. when its screen is closed.
func (s *Session) Abort() {
	if !s.started {
		s.started = true
		s.startedAt = s.clock.Now()
	}
	s.finish(Aborted)
}

func (s *Session) finish(o Outcome) {
	if s.outcome != Playing {
		return
	}
	s.regen()
	s.outcome = o
	s.endedAt = s.clock.Now()
	s.deadline.Stop()
	s.core.SetActive(false)

	summary := s.Summary()
	slog.Info("session_finished", "summary", summary)
	if s.onFinish != nil {
		s.onFinish(summary)
	}
}

// regen brings stamina up to date with the clock.
func (s *Session) regen() {
	now := s.clock.Now()
	if s.outcome == Playing && s.rules.RegenPerSec > 0 {
		gain := now.Sub(s.regenAt).Seconds() * s.rules.RegenPerSec
		s.stamina = math.Min(s.rules.MaxStamina, s.stamina+gain)
	}
	s.regenAt = now
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Difficulty returns the difficulty the session was created with.
func (s *Session) Difficulty() policy.Difficulty { return s.difficulty }

// Rules returns the session's rules.
func (s *Session) Rules() Rules { return s.rules }

// Score returns the points scored so far.
func (s *Session) Score() int { return s.score }

// Kills returns the number of bats hit so far.
func (s *Session) Kills() int { return s.kills }

// Outcome returns Playing until the session ends.
func (s *Session) Outcome() Outcome { return s.outcome }

// Finished reports whether the session has ended.
func (s *Session) Finished() bool { return s.outcome != Playing }

// Stamina returns the current stamina including regeneration since the last shot.
func (s *Session) Stamina() float64 {
	if !s.started || s.outcome != Playing || s.rules.RegenPerSec <= 0 {
		return s.stamina
	}
	gain := s.clock.Now().Sub(s.regenAt).Seconds() * s.rules.RegenPerSec
	return math.Min(s.rules.MaxStamina, s.stamina+gain)
}

// Elapsed returns how long the session has been running.
func (s *Session) Elapsed() time.Duration {
	switch {
	case !s.started:
		return 0
	case s.outcome != Playing:
		return s.endedAt.Sub(s.startedAt)
	default:
		return s.clock.Now().Sub(s.startedAt)
	}
}

// TimeLeft returns the remaining countdown.
func (s *Session) TimeLeft() time.Duration {
	left := s.rules.Duration - s.Elapsed()
	if left < 0 {
		return 0
	}
	return left
}

// Summary is the end-of-session record.
type Summary struct {
	SessionID   string  `csv:"session_id" json:"session_id"`
	Difficulty  string  `csv:"difficulty" json:"difficulty"`
	Outcome     Outcome `csv:"outcome" json:"outcome"`
	Score       int     `csv:"score" json:"score"`
	Kills       int     `csv:"kills" json:"kills"`
	KillTarget  int     `csv:"kill_target" json:"kill_target"`
	Shots       int     `csv:"shots" json:"shots"`
	Hits        int     `csv:"hits" json:"hits"`
	Accuracy    float64 `csv:"accuracy" json:"accuracy"`
	StaminaLeft float64 `csv:"stamina_left" json:"stamina_left"`
	ElapsedSec  float64 `csv:"elapsed_sec" json:"elapsed_sec"`
}

// Summary returns the current counters.
func (s *Session) Summary() Summary {
	var accuracy float64
	if s.shots > 0 {
		accuracy = float64(s.hits) / float64(s.shots)
	}
	return Summary{
		SessionID:   s.id,
		Difficulty:  s.difficulty.String(),
		Outcome:     s.outcome,
		Score:       s.score,
		Kills:       s.kills,
		KillTarget:  s.rules.KillTarget,
		Shots:       s.shots,
		Hits:        s.hits,
		Accuracy:    accuracy,
		StaminaLeft: s.Stamina(),
		ElapsedSec:  s.Elapsed().Seconds(),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("session", s.SessionID),
		slog.String("difficulty", s.Difficulty),
		slog.String("outcome", s.Outcome.String()),
		slog.Int("score", s.Score),
		slog.Int("kills", s.Kills),
		slog.Int("kill_target", s.KillTarget),
		slog.Int("shots", s.Shots),
		slog.Float64("accuracy", s.Accuracy),
		slog.Float64("stamina_left", s.StaminaLeft),
		slog.Float64("elapsed_sec", s.ElapsedSec),
	)
}
