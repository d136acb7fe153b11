package server

import (
	"github.com/pthm-cable/nightbats/components"
	"github.com/pthm-cable/nightbats/policy"
	"github.com/pthm-cable/nightbats/session"
)

// Client message types.
const (
	MsgTap        = "tap"
	MsgFire       = "fire"
	MsgDifficulty = "difficulty"
	MsgRestart    = "restart"
)

// ClientMessage is a command from a remote renderer.
type ClientMessage struct {
	Type  string  `json:"type"`
	X     float32 `json:"x,omitempty"`
	Y     float32 `json:"y,omitempty"`
	Value string  `json:"value,omitempty"`
}

// Welcome is the first message sent on a new connection.
type Welcome struct {
	Type         string   `json:"type"`
	RoomID       string   `json:"room_id"`
	ScreenWidth  int      `json:"screen_width"`
	ScreenHeight int      `json:"screen_height"`
	TickMs       int64    `json:"tick_ms"`
	Difficulties []string `json:"difficulties"`
}

// ShotMessage reports the result of a tap or fire.
type ShotMessage struct {
	Type     string          `json:"type"`
	Accepted bool            `json:"accepted"`
	Hit      bool            `json:"hit"`
	Points   int             `json:"points"`
	Stamina  float64         `json:"stamina"`
	Outcome  session.Outcome `json:"outcome"`
}

// FinishedMessage is sent once when a session ends.
type FinishedMessage struct {
	Type    string          `json:"type"`
	Summary session.Summary `json:"summary"`
}

// ErrorMessage reports a rejected command.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// DifficultyInfo describes one level for the /v1/difficulties endpoint.
type DifficultyInfo struct {
	Name             string             `json:"name"`
	SpawnIntervalMin int64              `json:"spawn_interval_min_ms"`
	SpawnIntervalMax int64              `json:"spawn_interval_max_ms"`
	MaxBats          int                `json:"max_bats"`
	Scale            float32            `json:"scale"`
	DepthNear        float32            `json:"depth_near"`
	DepthFar         float32            `json:"depth_far"`
	KillTarget       int                `json:"kill_target"`
	Weights          map[string]float64 `json:"weights"`
}

func difficultyInfo(s policy.Settings) DifficultyInfo {
	info := DifficultyInfo{
		Name:             s.Difficulty.String(),
		SpawnIntervalMin: s.SpawnIntervalMin.Milliseconds(),
		SpawnIntervalMax: s.SpawnIntervalMax.Milliseconds(),
		MaxBats:          s.MaxBats,
		Scale:            s.ScaleBase,
		DepthNear:        s.DepthNear,
		DepthFar:         s.DepthFar,
		KillTarget:       s.KillTarget,
		Weights:          make(map[string]float64, len(s.TypeWeights)),
	}
	for _, t := range components.AllBatTypes() {
		info.Weights[t.String()] = s.Weight(t)
	}
	return info
}
