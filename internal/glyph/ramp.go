package glyph

import (
	"errors"
	"math"
	"unicode/utf8"
)

// StandardRamp is the 70 level gray ramp from http://paulbourke.net/dataformats/asciiart/,
// ordered from the darkest/densest glyph to the lightest/sparsest one.
const StandardRamp = `$@B%8&WM#*oahkbdpqwmZO0QLCJUYXzcvunxrjft/\|()1{}[]?-_+~<>i!lI;:,"^` + "`" + `'. `

var ErrInvalidRamp = errors.New("invalid glyph ramp")

// Standard is the ramp used when none is configured.
var Standard = MustRamp(StandardRamp)

// Ramp is an ordered lookup table of glyphs, darkest first.
type Ramp struct {
	glyphs []rune
}

// NewRamp builds a ramp from s. Each rune of s is one level.
func NewRamp(s string) (Ramp, error) {
	if s == "" {
		return Ramp{}, ErrInvalidRamp
	}
	if !utf8.ValidString(s) {
		return Ramp{}, errors.Join(ErrInvalidRamp, errors.New("ramp is not valid UTF-8"))
	}
	return Ramp{glyphs: []rune(s)}, nil
}

// MustRamp is like NewRamp but panics on an empty ramp. Only use it for constants.
func MustRamp(s string) Ramp {
	r, err := NewRamp(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of levels in the ramp.
func (r Ramp) Len() int {
	return len(r.glyphs)
}

func (r Ramp) String() string {
	return string(r.glyphs)
}

/*
Index maps a grayscale sample onto the ramp:

	index = round((L-1) * x / 255)

Halves round to even. For integer samples (L-1)*x/255 never lands on a half
because 255 is odd, so the policy only matters for fractional input; see normalize.
The result is clamped to [0, L-1]; a zero-value Ramp always yields 0.
*/
func (r Ramp) Index(x uint8) int {
	return r.normalize(float64(x))
}

// Glyph returns the ramp glyph for sample x.
func (r Ramp) Glyph(x uint8) rune {
	if len(r.glyphs) == 0 {
		return ' '
	}
	return r.glyphs[r.Index(x)]
}

func (r Ramp) normalize(x float64) int {
	maxIdx := len(r.glyphs) - 1
	if maxIdx <= 0 {
		return 0
	}
	idx := int(math.RoundToEven(float64(maxIdx) * x / 255))
	return max(0, min(maxIdx, idx))
}
