package glyph

import (
	"image"
	"iter"
	"strings"
)

/*
Render maps every sample of buf onto ramp and yields one string per row, top
row first. The sequence is lazy and can be ranged over any number of times; it
reads buf on each pass, so callers must not mutate buf while iterating.

Render fails with ErrInvalidRamp for an empty ramp.
*/
func Render(buf *image.Gray, ramp Ramp) (iter.Seq[string], error) {
	if ramp.Len() == 0 {
		return nil, ErrInvalidRamp
	}

	return func(yield func(string) bool) {
		if buf == nil {
			return
		}
		bounds := buf.Bounds()
		var sb strings.Builder
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			sb.Reset()
			sb.Grow(bounds.Dx())
			row := buf.Pix[(y-bounds.Min.Y)*buf.Stride:]
			for x := range bounds.Dx() {
				sb.WriteRune(ramp.Glyph(row[x]))
			}
			if !yield(sb.String()) {
				return
			}
		}
	}, nil
}

// Text joins the rendered rows with newlines.
func Text(lines iter.Seq[string]) string {
	var sb strings.Builder
	first := true
	for line := range lines {
		if !first {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
		first = false
	}
	return sb.String()
}
