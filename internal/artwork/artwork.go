// Package artwork models one loaded image together with the parameters used to
// render it as text.
package artwork

import (
	"errors"
	"fmt"
	"image"
	"iter"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lehigh-university-libraries/asciistudio/internal/glyph"
	"github.com/lehigh-university-libraries/asciistudio/internal/images"
)

var (
	ErrInvalidAttribute = errors.New("invalid attribute")
	ErrInvalidDimension = errors.New("invalid dimension")
	ErrInvalidFactor    = errors.New("invalid enhancement factor")
)

const (
	// DefaultWidth is the target width used when Resize gets neither dimension.
	DefaultWidth = 50

	// Monospace glyphs are roughly twice as tall as they are wide, so the row
	// count is halved relative to the image aspect ratio.
	glyphAspect = 2
)

// Size is a width x height pair in pixels or glyphs.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

/*
Artwork tracks one image and its rendering parameters.

The decoded grayscale buffer is kept pristine for the lifetime of the artwork.
Every resize or enhance re-derives the displayed buffer from it in a fixed
order (resample, then brightness, then contrast), so factors are absolute and
repeated adjustments never drift.

Artwork is not safe for concurrent use.
*/
type Artwork struct {
	id         string
	sourcePath string
	alias      string

	native      Size
	aspectRatio float64
	target      Size
	hasTarget   bool
	brightness  float64
	contrast    float64

	pristine *image.Gray
	display  *image.Gray
	src      images.Source
	log      *zap.Logger
}

// New wraps a decoded buffer. An empty alias means the artwork has none.
func New(sourcePath, alias string, pristine *image.Gray, src images.Source, log *zap.Logger) (*Artwork, error) {
	if pristine == nil || pristine.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s has no pixels", ErrInvalidDimension, sourcePath)
	}
	if log == nil {
		log = zap.NewNop()
	}

	bounds := pristine.Bounds()
	return &Artwork{
		id:          uuid.NewString(),
		sourcePath:  sourcePath,
		alias:       alias,
		native:      Size{Width: bounds.Dx(), Height: bounds.Dy()},
		aspectRatio: float64(bounds.Dy()) / float64(bounds.Dx()),
		brightness:  1,
		contrast:    1,
		pristine:    pristine,
		display:     pristine,
		src:         src,
		log:         log,
	}, nil
}

// ID is a generated identity key, unique per loaded artwork.
func (a *Artwork) ID() string { return a.id }

// SourcePath is the path or URL the artwork was loaded from.
func (a *Artwork) SourcePath() string { return a.sourcePath }

// Alias returns the user-chosen name, if any.
func (a *Artwork) Alias() (string, bool) { return a.alias, a.alias != "" }

// DisplayName is the alias when set, otherwise the source path.
func (a *Artwork) DisplayName() string {
	if a.alias != "" {
		return a.alias
	}
	return a.sourcePath
}

// Matches reports whether name equals the alias or the source path.
func (a *Artwork) Matches(name string) bool {
	return (a.alias != "" && a.alias == name) || a.sourcePath == name
}

// Native is the decoded image size in pixels.
func (a *Artwork) Native() Size { return a.native }

// AspectRatio is native height / native width.
func (a *Artwork) AspectRatio() float64 { return a.aspectRatio }

// Target returns the render grid size; ok is false until the first Resize.
func (a *Artwork) Target() (Size, bool) { return a.target, a.hasTarget }

// Brightness is the absolute brightness factor, 1 when unchanged.
func (a *Artwork) Brightness() float64 { return a.brightness }

// Contrast is the absolute contrast factor, 1 when unchanged.
func (a *Artwork) Contrast() float64 { return a.contrast }

/*
Resize sets the render grid. A zero width or height means "not given":

  - neither given: width 50, height = round(aspect * 50 / 2)
  - width only:    height = round(aspect * width / 2)
  - height only:   width = round(height / aspect * 2)
  - both given:    used as-is

Rounding is half-to-even and derived sides never drop below 1.
*/
func (a *Artwork) Resize(width, height int) error {
	size, err := a.Plan(width, height)
	if err != nil {
		return err
	}
	prev, hadPrev := a.target, a.hasTarget
	a.target, a.hasTarget = size, true
	if err := a.refresh(); err != nil {
		a.target, a.hasTarget = prev, hadPrev
		return err
	}

	a.log.Debug("Artwork resized",
		zap.String("artwork", a.DisplayName()),
		zap.Stringer("size", size))
	return nil
}

// Plan returns the grid Resize(width, height) would set without applying it.
func (a *Artwork) Plan(width, height int) (Size, error) {
	if width < 0 || height < 0 {
		return Size{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, width, height)
	}

	switch {
	case width == 0 && height == 0:
		width = DefaultWidth
		height = a.heightFor(width)
	case height == 0:
		height = a.heightFor(width)
	case width == 0:
		width = a.widthFor(height)
	}
	return Size{Width: width, Height: height}, nil
}

func (a *Artwork) heightFor(width int) int {
	return max(1, int(math.RoundToEven(a.aspectRatio*float64(width)/glyphAspect)))
}

func (a *Artwork) widthFor(height int) int {
	return max(1, int(math.RoundToEven(float64(height)/a.aspectRatio*glyphAspect)))
}

/*
Enhance sets the absolute brightness or contrast factor. Setting brightness to
1.3 twice leaves it at 1.3; it does not compound. Brightness must be > 0,
contrast >= 0 (0 renders uniform gray).
*/
func (a *Artwork) Enhance(kind images.Enhancement, factor float64) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q (only 'brightness' and 'contrast' are defined)", ErrInvalidAttribute, kind)
	}
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor < 0 || (kind == images.Brightness && factor == 0) {
		return fmt.Errorf("%w: %s %v", ErrInvalidFactor, kind, factor)
	}

	field := &a.brightness
	if kind == images.Contrast {
		field = &a.contrast
	}

	prev := *field
	*field = factor
	if err := a.refresh(); err != nil {
		*field = prev
		return err
	}

	a.log.Debug("Artwork enhanced",
		zap.String("artwork", a.DisplayName()),
		zap.String("kind", string(kind)),
		zap.Float64("factor", factor))
	return nil
}

// refresh rebuilds the displayed buffer from the pristine one.
func (a *Artwork) refresh() error {
	buf := a.pristine
	if a.hasTarget {
		buf = a.src.Resize(buf, a.target.Width, a.target.Height)
	}

	var err error
	if a.brightness != 1 {
		if buf, err = a.src.Adjust(buf, images.Brightness, a.brightness); err != nil {
			return err
		}
	}
	if a.contrast != 1 {
		if buf, err = a.src.Adjust(buf, images.Contrast, a.contrast); err != nil {
			return err
		}
	}

	a.display = buf
	return nil
}

// Render returns the rows of the artwork as text. Without a prior Resize the
// native dimensions are used.
func (a *Artwork) Render(ramp glyph.Ramp) (iter.Seq[string], error) {
	return glyph.Render(a.display, ramp)
}

// Grid returns the size of the buffer Render draws from.
func (a *Artwork) Grid() Size {
	b := a.display.Bounds()
	return Size{Width: b.Dx(), Height: b.Dy()}
}
