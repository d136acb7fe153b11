package core

import (
	"math/rand"
	"testing"
	"time"

	"github.com/pthm-cable/nightbats/components"
	"github.com/pthm-cable/nightbats/config"
	"github.com/pthm-cable/nightbats/policy"
	"github.com/pthm-cable/nightbats/systems"
)

var testBounds = systems.Bounds{Width: 800, Height: 600, EdgeMargin: 50}

func TestAutoplayerRateLimit(t *testing.T) {
	a := NewAutoplayer(config.AutoplayerConfig{ShotsPerSec: 2}, testBounds, rand.New(rand.NewSource(1)))

	tests := []struct {
		at   time.Duration
		want bool
	}{
		{0, true},
		{100 * time.Millisecond, false},
		{499 * time.Millisecond, false},
		{500 * time.Millisecond, true},
		{600 * time.Millisecond, false},
		{2 * time.Second, true},
	}
	for _, tt := range tests {
		if _, _, got := a.Aim(epoch.Add(tt.at), nil); got != tt.want {
			t.Errorf("Aim at %v: shoot = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestAutoplayerDisabled(t *testing.T) {
	a := NewAutoplayer(config.AutoplayerConfig{}, testBounds, rand.New(rand.NewSource(1)))

	for i := 0; i < 10; i++ {
		if _, _, ok := a.Aim(epoch.Add(time.Duration(i)*time.Second), nil); ok {
			t.Fatal("autoplayer with zero rate shot")
		}
	}
}

func TestAutoplayerExactAim(t *testing.T) {
	a := NewAutoplayer(config.AutoplayerConfig{ShotsPerSec: 10}, testBounds, rand.New(rand.NewSource(3)))
	bats := []components.BatView{{ID: "a", X: 300, Y: 200}}

	for i := 0; i < 5; i++ {
		x, y, ok := a.Aim(epoch.Add(time.Duration(i)*time.Second), bats)
		if !ok {
			t.Fatalf("shot %d not due", i)
		}
		if x != 300 || y != 200 {
			t.Errorf("shot %d at (%v, %v), want (300, 200)", i, x, y)
		}
	}
}

func TestAutoplayerWithoutBatsStaysOnScreen(t *testing.T) {
	a := NewAutoplayer(config.AutoplayerConfig{ShotsPerSec: 10}, testBounds, rand.New(rand.NewSource(9)))

	for i := 0; i < 200; i++ {
		x, y, ok := a.Aim(epoch.Add(time.Duration(i)*time.Second), nil)
		if !ok {
			t.Fatalf("shot %d not due", i)
		}
		if x < 0 || x > testBounds.Width || y < 0 || y > testBounds.Height {
			t.Fatalf("shot %d at (%v, %v) is off screen", i, x, y)
		}
	}
}

func TestAutoplayerScoresAgainstScene(t *testing.T) {
	s, clk := newTestScene(policy.Easy, nil)
	s.SetActive(true)
	clk.Advance(1600 * time.Millisecond)

	a := NewAutoplayer(config.AutoplayerConfig{ShotsPerSec: 1}, testBounds, rand.New(rand.NewSource(4)))
	x, y, ok := a.Aim(clk.Now(), s.Bats())
	if !ok {
		t.Fatal("first shot not due")
	}
	if _, hit := s.TestHit(x, y); !hit {
		t.Errorf("perfect aim at (%v, %v) missed", x, y)
	}
}
