package images

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/gift"
	"gonum.org/v1/gonum/stat"
)

/*
Adjust applies a relative enhancement to buf:

  - Brightness scales every sample: x' = f * x
  - Contrast scales the distance to the mean luma, rounded to an integer level: x' = m + f * (x - m)

A factor of 1 leaves the buffer unchanged and 0 collapses it to black
(brightness) or uniform gray (contrast). Results are clamped to [0, 255].
*/
func (d *Decoder) Adjust(buf *image.Gray, kind Enhancement, factor float64) (*image.Gray, error) {
	return Adjust(buf, kind, factor)
}

// Adjust is the backend-independent implementation used by Decoder.
func Adjust(buf *image.Gray, kind Enhancement, factor float64) (*image.Gray, error) {
	if factor < 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, fmt.Errorf("invalid %s factor %v", kind, factor)
	}

	f := float32(factor)
	var fn func(r, g, b, a float32) (float32, float32, float32, float32)

	switch kind {
	case Brightness:
		fn = func(r, g, b, a float32) (float32, float32, float32, float32) {
			return clamp01(r * f), clamp01(g * f), clamp01(b * f), a
		}
	case Contrast:
		m := float32(math.Floor(meanLuma(buf)+0.5) / 255)
		fn = func(r, g, b, a float32) (float32, float32, float32, float32) {
			return clamp01(m + f*(r-m)), clamp01(m + f*(g-m)), clamp01(m + f*(b-m)), a
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEnhancement, kind)
	}

	g := gift.New(gift.ColorFunc(fn))
	dst := image.NewGray(g.Bounds(buf.Bounds()))
	g.Draw(dst, buf)
	return dst, nil
}

func meanLuma(buf *image.Gray) float64 {
	bounds := buf.Bounds()
	samples := make([]float64, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := buf.Pix[buf.PixOffset(bounds.Min.X, y):]
		for x := range bounds.Dx() {
			samples = append(samples, float64(row[x]))
		}
	}
	if len(samples) == 0 {
		return 0
	}
	return stat.Mean(samples, nil)
}

func clamp01(v float32) float32 {
	return max(0, min(1, v))
}
