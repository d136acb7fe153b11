package systems

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/pthm-cable/nightbats/components"
	"github.com/pthm-cable/nightbats/policy"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testBounds() Bounds {
	return Bounds{Width: 1280, Height: 720, EdgeMargin: 100}
}

func newTestFactory(seed int64) *BatFactory {
	return NewBatFactory(rand.New(rand.NewSource(seed)), policy.Default(), testBounds(), 15*time.Second, 25*time.Second)
}

// ---------- SampleBatType ----------

func TestSampleBatType(t *testing.T) {
	weights := [components.BatTypeCount]float64{0.60, 0.30, 0.10}

	tests := []struct {
		name string
		draw float64
		want components.BatType
	}{
		{"zero", 0, components.BatSmall},
		{"inside small", 0.59, components.BatSmall},
		{"small boundary", 0.60, components.BatLarge},
		{"inside large", 0.89, components.BatLarge},
		{"ghost", 0.95, components.BatGhost},
		{"just below one", 0.9999999999, components.BatGhost},
		{"rounding overflow", 1.0, components.BatGhost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SampleBatType(weights, tt.draw); got != tt.want {
				t.Errorf("SampleBatType(%v) = %v, want %v", tt.draw, got, tt.want)
			}
		})
	}
}

func TestSampleBatTypeShortWeights(t *testing.T) {
	// Weights summing below 1 still resolve to the last category
	weights := [components.BatTypeCount]float64{0.2, 0.2, 0.2}
	if got := SampleBatType(weights, 0.9); got != components.BatGhost {
		t.Errorf("SampleBatType = %v, want GHOST", got)
	}
}

// ---------- DepthSizeFactor ----------

func TestDepthSizeFactor(t *testing.T) {
	tests := []struct {
		z, near, far float32
		want         float32
	}{
		{5, 5, 10, 1.0},
		{10, 5, 10, 0.5},
		{7.5, 5, 10, 0.75},
		{1, 1, 15, 1.0},
		{8, 1, 15, 0.75},
		{20, 1, 15, 0.5}, // clamped
		{3, 3, 3, 1.0},   // degenerate range
	}

	for _, tt := range tests {
		got := DepthSizeFactor(tt.z, tt.near, tt.far)
		if math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("DepthSizeFactor(%v, %v, %v) = %v, want %v", tt.z, tt.near, tt.far, got, tt.want)
		}
	}
}

// ---------- Create ----------

func TestCreateRespectsBounds(t *testing.T) {
	f := newTestFactory(7)
	b := testBounds()

	for _, d := range policy.AllDifficulties() {
		s := policy.SettingsFor(d)
		for i := 0; i < 500; i++ {
			pos, bat, life := f.Create(s, epoch)

			if pos.X < 0 || pos.X >= b.Width {
				t.Fatalf("%v: x = %v outside [0, %v)", d, pos.X, b.Width)
			}
			if pos.Y < b.EdgeMargin || pos.Y >= b.Height-b.EdgeMargin {
				t.Fatalf("%v: y = %v outside central band", d, pos.Y)
			}
			if pos.Z < s.DepthNear || pos.Z >= s.DepthFar {
				t.Fatalf("%v: z = %v outside [%v, %v)", d, pos.Z, s.DepthNear, s.DepthFar)
			}
			if life.Duration < 15*time.Second || life.Duration >= 25*time.Second {
				t.Fatalf("lifespan = %v outside [15s, 25s)", life.Duration)
			}
			if !life.CreatedAt.Equal(epoch) {
				t.Fatalf("CreatedAt = %v, want %v", life.CreatedAt, epoch)
			}
			if bat.Rotation < -15 || bat.Rotation >= 15 {
				t.Fatalf("rotation = %v outside [-15, 15)", bat.Rotation)
			}

			traits := policy.Default().Traits(bat.Type)
			if bat.Points != traits.Points || bat.Speed != traits.Speed {
				t.Fatalf("%v: points/speed = %d/%v, want %d/%v", bat.Type, bat.Points, bat.Speed, traits.Points, traits.Speed)
			}
			wantScale := s.ScaleBase * DepthSizeFactor(pos.Z, s.DepthNear, s.DepthFar) * traits.Scale
			if math.Abs(float64(bat.Scale-wantScale)) > 1e-6 {
				t.Fatalf("scale = %v, want %v", bat.Scale, wantScale)
			}
		}
	}
}

func TestCreateAssignsUniqueIDsAndSequence(t *testing.T) {
	f := newTestFactory(1)
	s := policy.SettingsFor(policy.Hard)

	seen := make(map[string]bool)
	var lastSeq uint64
	for i := 0; i < 1000; i++ {
		_, bat, _ := f.Create(s, epoch)
		if bat.ID == "" {
			t.Fatal("empty id")
		}
		if seen[bat.ID] {
			t.Fatalf("duplicate id %s", bat.ID)
		}
		seen[bat.ID] = true
		if bat.Seq <= lastSeq {
			t.Fatalf("seq %d not increasing after %d", bat.Seq, lastSeq)
		}
		lastSeq = bat.Seq
	}
}

func TestCreateIsDeterministicForSeed(t *testing.T) {
	a := newTestFactory(99)
	b := newTestFactory(99)
	s := policy.SettingsFor(policy.Medium)

	for i := 0; i < 20; i++ {
		pa, ba, la := a.Create(s, epoch)
		pb, bb, lb := b.Create(s, epoch)
		if pa != pb || ba != bb || la != lb {
			t.Fatalf("draw %d differs: %+v vs %+v", i, ba, bb)
		}
	}
}

func TestCreateTypeDistribution(t *testing.T) {
	f := newTestFactory(2024)
	s := policy.SettingsFor(policy.Easy)

	const n = 20000
	var counts [components.BatTypeCount]int
	for i := 0; i < n; i++ {
		_, bat, _ := f.Create(s, epoch)
		counts[bat.Type]++
	}

	for i, w := range s.TypeWeights {
		got := float64(counts[i]) / n
		if math.Abs(got-w) > 0.02 {
			t.Errorf("%v frequency = %.3f, want ~%.2f", components.BatType(i), got, w)
		}
	}
}
