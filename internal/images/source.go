// Package images is the grayscale image collaborator used by artworks: it
// decodes files or URLs into 8-bit grayscale buffers, resamples them and applies
// brightness/contrast factors.
package images

import (
	"context"
	"errors"
	"fmt"
	"image"
)

var (
	// ErrLoadFailure reports a missing, unreadable or undecodable image.
	ErrLoadFailure = errors.New("image load failure")
	// ErrUnknownEnhancement reports an adjustment kind other than brightness or contrast.
	ErrUnknownEnhancement = errors.New("unknown enhancement")
)

// Enhancement names a photometric adjustment.
type Enhancement string

const (
	Brightness Enhancement = "brightness"
	Contrast   Enhancement = "contrast"
)

// Valid reports whether e is one of the supported adjustments.
func (e Enhancement) Valid() bool {
	return e == Brightness || e == Contrast
}

// ParseEnhancement converts user input into an Enhancement.
func ParseEnhancement(s string) (Enhancement, error) {
	e := Enhancement(s)
	if !e.Valid() {
		return "", fmt.Errorf("%w: %q (use 'brightness' or 'contrast')", ErrUnknownEnhancement, s)
	}
	return e, nil
}

// Source defines what artworks need from an image processing backend.
type Source interface {
	// Load decodes path into a grayscale buffer whose bounds start at (0, 0).
	Load(ctx context.Context, path string) (*image.Gray, error)
	// Resize resamples buf to width x height.
	Resize(buf *image.Gray, width, height int) *image.Gray
	// Adjust applies a relative factor of the given kind to buf and returns a new buffer.
	Adjust(buf *image.Gray, kind Enhancement, factor float64) (*image.Gray, error)
}

func loadFailure(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrLoadFailure, path, err)
}
