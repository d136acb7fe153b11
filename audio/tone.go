package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// ToneGenerator produces a sine sweep from one frequency to another with a
// linear decay envelope. It streams forever; bound it with beep.Take.
type ToneGenerator struct {
	sr       beep.SampleRate
	from, to float64
	length   int
	volume   float64
	pos      int
	phase    float64
}

// NewToneGenerator creates a sweep lasting d.
func NewToneGenerator(sr beep.SampleRate, fromHz, toHz float64, d time.Duration, volume float64) *ToneGenerator {
	n := sr.N(d)
	if n < 1 {
		n = 1
	}
	return &ToneGenerator{sr: sr, from: fromHz, to: toHz, length: n, volume: volume}
}

// Stream implements beep.Streamer.
func (g *ToneGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := math.Min(float64(g.pos)/float64(g.length), 1)
		freq := g.from + (g.to-g.from)*t
		g.phase += 2 * math.Pi * freq / float64(g.sr)

		v := g.volume * (1 - t) * math.Sin(g.phase)
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (g *ToneGenerator) Err() error {
	return nil
}
