package session

import (
	"testing"
	"time"

	"github.com/pthm-cable/nightbats/clock"
	"github.com/pthm-cable/nightbats/config"
	"github.com/pthm-cable/nightbats/policy"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeCore hits whenever a target point is registered at the tap coordinate.
type fakeCore struct {
	active  bool
	toggles []bool
	targets map[[2]float32]int
	onHit   func(int)
}

func (f *fakeCore) SetActive(active bool) {
	f.active = active
	f.toggles = append(f.toggles, active)
}

func (f *fakeCore) TestHit(x, y float32) (int, bool) {
	if !f.active {
		return 0, false
	}
	pts, ok := f.targets[[2]float32{x, y}]
	if !ok {
		return 0, false
	}
	delete(f.targets, [2]float32{x, y})
	if f.onHit != nil {
		f.onHit(pts)
	}
	return pts, true
}

func testRules() Rules {
	return Rules{
		Duration:    60 * time.Second,
		MaxStamina:  100,
		ShotCost:    10,
		MissPenalty: 5,
		KillTarget:  3,
		CrosshairX:  640,
		CrosshairY:  360,
	}
}

func newTestSession(rules Rules) (*Session, *fakeCore, *clock.Clock) {
	clk := clock.New(epoch)
	core := &fakeCore{targets: make(map[[2]float32]int)}
	s := New(clk, core, rules, policy.Medium)
	core.onHit = s.OnBatHit
	return s, core, clk
}

func TestStartActivatesCore(t *testing.T) {
	s, core, _ := newTestSession(testRules())
	s.Start()
	s.Start()

	if !core.active || len(core.toggles) != 1 {
		t.Errorf("toggles = %v, want [true]", core.toggles)
	}
	if s.Outcome() != Playing {
		t.Errorf("Outcome() = %v, want playing", s.Outcome())
	}
	if s.ID() == "" {
		t.Error("empty session id")
	}
}

func TestHitScoresAndMissCostsStamina(t *testing.T) {
	s, core, _ := newTestSession(testRules())
	s.Start()
	core.targets[[2]float32{100, 200}] = 15

	res := s.Tap(100, 200)
	if !res.Accepted || !res.Hit || res.Points != 15 {
		t.Errorf("hit result = %+v", res)
	}
	if s.Score() != 15 || s.Kills() != 1 {
		t.Errorf("score/kills = %d/%d, want 15/1", s.Score(), s.Kills())
	}
	if res.Stamina != 90 {
		t.Errorf("stamina after hit = %v, want 90", res.Stamina)
	}

	res = s.Tap(100, 200) // bat already gone
	if res.Hit || res.Points != 0 {
		t.Errorf("second tap = %+v, want miss", res)
	}
	if res.Stamina != 75 {
		t.Errorf("stamina after miss = %v, want 75", res.Stamina)
	}
}

func TestFireUsesCrosshair(t *testing.T) {
	s, core, _ := newTestSession(testRules())
	s.Start()
	core.targets[[2]float32{640, 360}] = 25

	if res := s.Fire(); !res.Hit || res.Points != 25 {
		t.Errorf("Fire() = %+v, want ghost hit", res)
	}
}

func TestWinAtKillTarget(t *testing.T) {
	s, core, clk := newTestSession(testRules())

	var finished []Summary
	s.OnFinish(func(sum Summary) { finished = append(finished, sum) })
	s.Start()

	for i := 0; i < 3; i++ {
		core.targets[[2]float32{float32(i), 0}] = 10
		s.Tap(float32(i), 0)
	}

	if s.Outcome() != Won {
		t.Fatalf("Outcome() = %v, want won", s.Outcome())
	}
	if core.active {
		t.Error("core still active after win")
	}
	if len(finished) != 1 || finished[0].Score != 30 || finished[0].Outcome != Won {
		t.Errorf("finish callbacks = %+v", finished)
	}
	if len(finished) == 1 {
		got := finished[0]
		if got.Hits != got.Kills || got.Shots != 3 {
			t.Errorf("summary hits = %d, kills = %d, shots = %d, want 3 each", got.Hits, got.Kills, got.Shots)
		}
		if got.Accuracy != 1 {
			t.Errorf("summary accuracy = %v, want 1", got.Accuracy)
		}
		if later := s.Summary(); later.Hits != got.Hits || later.Accuracy != got.Accuracy {
			t.Errorf("Summary() hits = %d accuracy = %v, finish reported %d and %v", later.Hits, later.Accuracy, got.Hits, got.Accuracy)
		}
	}

	// Countdown was cancelled
	if clk.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", clk.Pending())
	}
	if res := s.Tap(0, 0); res.Accepted {
		t.Error("tap accepted after session end")
	}
}

func TestLoseOnStamina(t *testing.T) {
	rules := testRules()
	rules.MissPenalty = 0
	s, _, _ := newTestSession(rules)
	s.Start()

	for i := 0; i < 9; i++ {
		s.Tap(-1, -1)
	}
	if s.Outcome() != Playing {
		t.Fatalf("Outcome() after 9 misses = %v, want playing", s.Outcome())
	}
	res := s.Tap(-1, -1)
	if res.Outcome != LostStamina || res.Stamina != 0 {
		t.Errorf("10th miss = %+v, want lost_stamina at 0", res)
	}
}

func TestLoseOnTime(t *testing.T) {
	s, core, clk := newTestSession(testRules())
	s.Start()

	clk.Advance(59 * time.Second)
	if s.Finished() {
		t.Fatal("finished before countdown")
	}
	if got := s.TimeLeft(); got != time.Second {
		t.Errorf("TimeLeft() = %v, want 1s", got)
	}

	clk.Advance(time.Second)
	if s.Outcome() != LostTime {
		t.Errorf("Outcome() = %v, want lost_time", s.Outcome())
	}
	if core.active {
		t.Error("core still active after timeout")
	}
	if s.TimeLeft() != 0 {
		t.Errorf("TimeLeft() = %v, want 0", s.TimeLeft())
	}
}

func TestStaminaRegen(t *testing.T) {
	rules := testRules()
	rules.RegenPerSec = 2
	s, _, clk := newTestSession(rules)
	s.Start()

	s.Tap(-1, -1) // 100 - 10 - 5 = 85
	clk.Advance(5 * time.Second)

	if got := s.Stamina(); got != 95 {
		t.Errorf("Stamina() after 5s = %v, want 95", got)
	}
	clk.Advance(time.Minute - 6*time.Second)
	if got := s.Stamina(); got > rules.MaxStamina {
		t.Errorf("Stamina() = %v exceeds max", got)
	}
}

func TestAbortDeactivates(t *testing.T) {
	s, core, clk := newTestSession(testRules())
	s.Start()
	s.Abort()
	s.Abort()

	if s.Outcome() != Aborted {
		t.Errorf("Outcome() = %v, want aborted", s.Outcome())
	}
	if len(core.toggles) != 2 || core.active {
		t.Errorf("toggles = %v, want [true false]", core.toggles)
	}
	if clk.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", clk.Pending())
	}
}

func TestRulesFromConfig(t *testing.T) {
	cfg := config.Defaults()

	tests := []struct {
		d    policy.Difficulty
		want int
	}{
		{policy.Easy, 8},
		{policy.Medium, 10},
		{policy.Hard, 15},
	}

	for _, tt := range tests {
		r := RulesFromConfig(cfg, tt.d)
		if r.KillTarget != tt.want {
			t.Errorf("%v KillTarget = %d, want %d", tt.d, r.KillTarget, tt.want)
		}
		if r.Duration != 60*time.Second || r.MaxStamina != 100 {
			t.Errorf("%v duration/stamina = %v/%v", tt.d, r.Duration, r.MaxStamina)
		}
	}
}
