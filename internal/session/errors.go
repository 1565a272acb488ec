package session

import (
	"errors"
	"fmt"

	"github.com/lehigh-university-libraries/asciistudio/internal/storage"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAmbiguousName = errors.New("ambiguous name")
	ErrNoCurrent     = errors.New("no current image")

	ErrMalformedSession = storage.ErrMalformedSession
	ErrIOFailure        = storage.ErrIOFailure
)

// ResolveError reports why a name did not resolve to exactly one artwork.
type ResolveError struct {
	Kind error
	Name string
}

func (e *ResolveError) Error() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case ErrNotFound:
		return fmt.Sprintf("no image was found with the name '%s'", e.Name)
	case ErrAmbiguousName:
		return fmt.Sprintf("more than one image was found with the name or alias '%s'", e.Name)
	case ErrNoCurrent:
		return "no current image is set"
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Name)
}

func (e *ResolveError) Unwrap() error { return e.Kind }
