package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"

	"github.com/disintegration/gift"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decoder is the default Source. It decodes png, jpeg, gif, bmp, tiff and webp
// from local files, and from http(s) URLs when a Fetcher is configured.
type Decoder struct {
	fetcher    *Fetcher
	resampling gift.Resampling
	log        *zap.Logger
}

type Option func(*Decoder)

// WithFetcher enables loading http(s) URLs.
func WithFetcher(f *Fetcher) Option {
	return func(d *Decoder) {
		d.fetcher = f
	}
}

// WithResampling sets the filter used by Resize. The default is cubic.
func WithResampling(r gift.Resampling) Option {
	return func(d *Decoder) {
		if r != nil {
			d.resampling = r
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(d *Decoder) {
		if log != nil {
			d.log = log
		}
	}
}

func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		resampling: gift.CubicResampling,
		log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ParseResampling maps a config name onto a gift resampling filter.
func ParseResampling(name string) (gift.Resampling, error) {
	switch name {
	case "nearest":
		return gift.NearestNeighborResampling, nil
	case "box":
		return gift.BoxResampling, nil
	case "linear":
		return gift.LinearResampling, nil
	case "", "cubic":
		return gift.CubicResampling, nil
	case "lanczos":
		return gift.LanczosResampling, nil
	default:
		return nil, fmt.Errorf("unknown resampling filter %q (nearest, box, linear, cubic, lanczos)", name)
	}
}

func (d *Decoder) Load(ctx context.Context, path string) (*image.Gray, error) {
	var r io.Reader
	if IsRemote(path) {
		if d.fetcher == nil {
			return nil, loadFailure(path, errors.New("remote images are not enabled"))
		}
		data, err := d.fetcher.Fetch(ctx, path)
		if err != nil {
			return nil, loadFailure(path, err)
		}
		r = bytes.NewReader(data)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, loadFailure(path, err)
		}
		defer f.Close()
		r = f
	}

	img, format, err := image.Decode(r)
	if err != nil {
		return nil, loadFailure(path, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, loadFailure(path, errors.New("image has no pixels"))
	}

	d.log.Debug("Image decoded",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()))

	return ToGray(img), nil
}

// ToGray converts img to an 8-bit luma buffer anchored at (0, 0) using
// L = 0.299 R + 0.587 G + 0.114 B on un-premultiplied sRGB values. Alpha is
// ignored: a fully transparent pixel keeps the luma of its stored colour.
func ToGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	switch src := img.(type) {
	case *image.Gray:
		for y := range bounds.Dy() {
			row := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			copy(out.Pix[y*out.Stride:y*out.Stride+bounds.Dx()], row[:bounds.Dx()])
		}
		return out
	case *image.NRGBA:
		for y := range bounds.Dy() {
			for x := range bounds.Dx() {
				c := src.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
				out.Pix[y*out.Stride+x] = luma(float64(c.R)/0xff, float64(c.G)/0xff, float64(c.B)/0xff)
			}
		}
		return out
	case *image.NRGBA64:
		for y := range bounds.Dy() {
			for x := range bounds.Dx() {
				c := src.NRGBA64At(bounds.Min.X+x, bounds.Min.Y+y)
				out.Pix[y*out.Stride+x] = luma(float64(c.R)/0xffff, float64(c.G)/0xffff, float64(c.B)/0xffff)
			}
		}
		return out
	}

	for y := range bounds.Dy() {
		for x := range bounds.Dx() {
			px := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			if c, ok := colorful.MakeColor(px); ok {
				out.Pix[y*out.Stride+x] = luma(c.R, c.G, c.B)
				continue
			}
			// zero alpha, e.g. a transparent palette entry
			out.Pix[y*out.Stride+x] = luma(storedRGB(px))
		}
	}
	return out
}

// storedRGB returns the colour components without alpha premultiplication
// where the colour type keeps them.
func storedRGB(c color.Color) (r, g, b float64) {
	switch c := c.(type) {
	case color.NRGBA:
		return float64(c.R) / 0xff, float64(c.G) / 0xff, float64(c.B) / 0xff
	case color.NRGBA64:
		return float64(c.R) / 0xffff, float64(c.G) / 0xffff, float64(c.B) / 0xffff
	}
	r32, g32, b32, _ := c.RGBA()
	return float64(r32) / 0xffff, float64(g32) / 0xffff, float64(b32) / 0xffff
}

// luma takes components in [0, 1].
func luma(r, g, b float64) uint8 {
	l := 0.299*r + 0.587*g + 0.114*b
	return uint8(max(0, min(255, math.Round(l*255))))
}

func (d *Decoder) Resize(buf *image.Gray, width, height int) *image.Gray {
	g := gift.New(gift.Resize(width, height, d.resampling))
	dst := image.NewGray(g.Bounds(buf.Bounds()))
	g.Draw(dst, buf)
	return dst
}
