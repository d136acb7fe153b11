package audio

import (
	"math"
	"testing"
	"time"
)

func drain(c Cue) (samples int, peak float64) {
	s := CueStreamer(c)
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for _, v := range buf[:n] {
			peak = math.Max(peak, math.Abs(v[0]))
		}
		samples += n
		if !ok || n == 0 {
			return samples, peak
		}
	}
}

func TestCueLengths(t *testing.T) {
	tests := []struct {
		cue  Cue
		want time.Duration
	}{
		{CueHit, 120 * time.Millisecond},
		{CueMiss, 90 * time.Millisecond},
		{CueWin, 600 * time.Millisecond},
		{CueLose, 400 * time.Millisecond},
	}

	for _, tt := range tests {
		got, peak := drain(tt.cue)
		want := sampleRate.N(tt.want)
		if math.Abs(float64(got-want)) > 2 {
			t.Errorf("cue %d: %d samples, want %d", tt.cue, got, want)
		}
		if peak <= 0 || peak > 0.31 {
			t.Errorf("cue %d: peak %v outside (0, 0.31]", tt.cue, peak)
		}
	}
}

func TestToneGeneratorDecays(t *testing.T) {
	g := NewToneGenerator(sampleRate, 440, 440, 100*time.Millisecond, 0.5)
	buf := make([][2]float64, sampleRate.N(100*time.Millisecond))
	g.Stream(buf)

	var head, tail float64
	for i := 0; i < 200; i++ {
		head = math.Max(head, math.Abs(buf[i][0]))
		tail = math.Max(tail, math.Abs(buf[len(buf)-1-i][0]))
	}
	if tail >= head {
		t.Errorf("tail peak %v >= head peak %v, want decay", tail, head)
	}
	if buf[10][0] != buf[10][1] {
		t.Error("channels differ")
	}
}

func TestDisabledPlayerIsSilent(t *testing.T) {
	p := NewPlayer(false)
	p.Play(CueHit) // not initialized: no-op
	p.SetEnabled(true)
	if !p.Enabled() {
		t.Error("Enabled() = false after SetEnabled(true)")
	}
	p.Close()
}
