// Package session keeps track of every artwork loaded in a studio session,
// resolves names to artworks and persists the session's parameters.
package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/lehigh-university-libraries/asciistudio/internal/artwork"
	"github.com/lehigh-university-libraries/asciistudio/internal/glyph"
	"github.com/lehigh-university-libraries/asciistudio/internal/images"
	"github.com/lehigh-university-libraries/asciistudio/internal/models"
	"github.com/lehigh-university-libraries/asciistudio/internal/storage"
)

// CurrentName is the reserved name that resolves to the current artwork.
const CurrentName = "current"

// DefaultMaxDimension is the largest grid side a registry allows unless
// WithMaxDimension says otherwise.
const DefaultMaxDimension = 5000

// Axis names the dimension a SetDimension call changes.
type Axis string

const (
	Width  Axis = "width"
	Height Axis = "height"
)

// Option configures a Registry.
type Option func(*Registry)

// WithRamp replaces the standard glyph ramp used for rendering.
func WithRamp(ramp glyph.Ramp) Option {
	return func(r *Registry) {
		r.ramp = ramp
	}
}

// WithAutoResize controls whether Load resizes new artworks to the default
// width. It is on by default.
func WithAutoResize(on bool) Option {
	return func(r *Registry) {
		r.autoResize = on
	}
}

// WithMaxDimension caps either side of a render grid. Restored sessions whose
// saved targets exceed it are rejected as malformed.
func WithMaxDimension(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxDimension = n
		}
	}
}

// WithLogger sets the logger; nil keeps the no-op default.
func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

/*
Registry holds the artworks of one session in load order and tracks which of
them is current. Current is stored by artwork ID and always names the artwork
most recently loaded, resized, enhanced or rendered.

Registry is not safe for concurrent use.
*/
type Registry struct {
	src        images.Source
	ramp       glyph.Ramp
	autoResize bool
	log        *zap.Logger

	maxDimension int

	artworks []*artwork.Artwork
	current  string
}

// New creates an empty registry that decodes images through src.
func New(src images.Source, opts ...Option) *Registry {
	r := &Registry{
		src:        src,
		ramp:       glyph.Standard,
		autoResize: true,
		log:        zap.NewNop(),

		maxDimension: DefaultMaxDimension,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Len is the number of loaded artworks.
func (r *Registry) Len() int { return len(r.artworks) }

// Current returns the current artwork, if any.
func (r *Registry) Current() (*artwork.Artwork, bool) {
	if r.current == "" {
		return nil, false
	}
	for _, a := range r.artworks {
		if a.ID() == r.current {
			return a, true
		}
	}
	return nil, false
}

func (r *Registry) touch(a *artwork.Artwork) {
	r.current = a.ID()
}

// Load decodes path into a new artwork, appends it and makes it current.
// Nothing is appended when decoding fails.
func (r *Registry) Load(ctx context.Context, path, alias string) (*artwork.Artwork, error) {
	a, err := r.build(ctx, path, alias)
	if err != nil {
		return nil, err
	}

	if r.autoResize {
		if err := r.resize(a, artwork.DefaultWidth, 0); err != nil {
			return nil, err
		}
	}

	r.artworks = append(r.artworks, a)
	r.touch(a)

	r.log.Info("Loaded image",
		zap.String("path", path),
		zap.String("alias", alias),
		zap.Stringer("size", a.Native()))
	return a, nil
}

func (r *Registry) build(ctx context.Context, path, alias string) (*artwork.Artwork, error) {
	buf, err := r.src.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return artwork.New(path, alias, buf, r.src, r.log)
}

/*
Resolve maps a name to exactly one artwork.

"current" yields the current artwork. Any other name is compared against every
alias and source path; zero matches is ErrNotFound and more than one is
ErrAmbiguousName, both reported as a *ResolveError.
*/
func (r *Registry) Resolve(name string) (*artwork.Artwork, error) {
	if name == CurrentName {
		a, ok := r.Current()
		if !ok {
			return nil, &ResolveError{Kind: ErrNoCurrent, Name: name}
		}
		return a, nil
	}

	var match *artwork.Artwork
	matches := 0
	for _, a := range r.artworks {
		if a.Matches(name) {
			match = a
			matches++
		}
	}

	switch matches {
	case 0:
		return nil, &ResolveError{Kind: ErrNotFound, Name: name}
	case 1:
		return match, nil
	default:
		return nil, &ResolveError{Kind: ErrAmbiguousName, Name: name}
	}
}

// ParseAxis accepts "width" or "height".
func ParseAxis(s string) (Axis, error) {
	switch a := Axis(strings.ToLower(s)); a {
	case Width, Height:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q (use 'width' or 'height')", artwork.ErrInvalidAttribute, s)
}

// SetDimension sets one side of the render grid and derives the other from
// the aspect ratio. The resolved artwork becomes current.
func (r *Registry) SetDimension(name string, axis Axis, value int) error {
	a, err := r.Resolve(name)
	if err != nil {
		return err
	}

	switch axis {
	case Width:
		err = r.resize(a, value, 0)
	case Height:
		err = r.resize(a, 0, value)
	default:
		err = fmt.Errorf("%w: %q (use 'width' or 'height')", artwork.ErrInvalidAttribute, axis)
	}
	if err != nil {
		return err
	}

	r.touch(a)
	return nil
}

// SetSize sets the render grid from explicit width and height, either of
// which may be zero to derive it from the aspect ratio. The resolved artwork
// becomes current.
func (r *Registry) SetSize(name string, width, height int) error {
	a, err := r.Resolve(name)
	if err != nil {
		return err
	}
	if err := r.resize(a, width, height); err != nil {
		return err
	}
	r.touch(a)
	return nil
}

// resize applies a grid only when both of its sides fit the registry limit,
// leaving the artwork unchanged otherwise.
func (r *Registry) resize(a *artwork.Artwork, width, height int) error {
	size, err := a.Plan(width, height)
	if err != nil {
		return err
	}
	if size.Width > r.maxDimension || size.Height > r.maxDimension {
		return fmt.Errorf("%w: %s exceeds the maximum of %d", artwork.ErrInvalidDimension, size, r.maxDimension)
	}
	return a.Resize(width, height)
}

// SetEnhance sets an absolute brightness or contrast factor. The resolved
// artwork becomes current.
func (r *Registry) SetEnhance(name string, kind images.Enhancement, factor float64) error {
	a, err := r.Resolve(name)
	if err != nil {
		return err
	}
	if err := a.Enhance(kind, factor); err != nil {
		return err
	}
	r.touch(a)
	return nil
}

// Render resolves name, an empty name meaning current, and returns its rows.
// The resolved artwork becomes current.
func (r *Registry) Render(name string) (iter.Seq[string], error) {
	if name == "" {
		name = CurrentName
	}
	a, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}

	lines, err := a.Render(r.ramp)
	if err != nil {
		return nil, err
	}
	r.touch(a)
	return lines, nil
}

// RenderTo renders name into a text file and returns the path written.
// ".txt" is appended when path has no extension.
func (r *Registry) RenderTo(name, path string) (string, error) {
	lines, err := r.Render(name)
	if err != nil {
		return "", err
	}

	if filepath.Ext(path) == "" {
		path += ".txt"
	}
	if err := storage.WriteAtomic(path, []byte(glyph.Text(lines)+"\n")); err != nil {
		return "", err
	}

	r.log.Info("Rendered to file", zap.String("name", name), zap.String("path", path))
	return path, nil
}

// Entry is one artwork's line in an info report.
type Entry struct {
	FileName   string
	Alias      string
	HasAlias   bool
	Native     artwork.Size
	Target     artwork.Size
	HasTarget  bool
	Brightness float64
	Contrast   float64
}

// Report describes the session. Entries can be ranged over any number of times.
type Report struct {
	Entries iter.Seq[Entry]
	// Current is the display name of the current artwork, or "none".
	Current string
}

// Info snapshots the registry into a report.
func (r *Registry) Info() Report {
	members := slices.Clone(r.artworks)
	report := Report{
		Entries: func(yield func(Entry) bool) {
			for _, a := range members {
				alias, hasAlias := a.Alias()
				target, hasTarget := a.Target()
				e := Entry{
					FileName:   a.SourcePath(),
					Alias:      alias,
					HasAlias:   hasAlias,
					Native:     a.Native(),
					Target:     target,
					HasTarget:  hasTarget,
					Brightness: a.Brightness(),
					Contrast:   a.Contrast(),
				}
				if !yield(e) {
					return
				}
			}
		},
		Current: "none",
	}
	if a, ok := r.Current(); ok {
		report.Current = a.DisplayName()
	}
	return report
}

// Snapshot converts the registry into its persisted form.
func (r *Registry) Snapshot() *models.Session {
	doc := &models.Session{Members: make([]models.Member, 0, len(r.artworks))}
	for _, a := range r.artworks {
		m := models.Member{FileName: a.SourcePath()}
		if alias, ok := a.Alias(); ok {
			m.Alias = &alias
		}
		if target, ok := a.Target(); ok {
			w, h := target.Width, target.Height
			m.TargetWidth, m.TargetHeight = &w, &h
		}
		b, c := a.Brightness(), a.Contrast()
		m.Brightness, m.Contrast = &b, &c
		doc.Members = append(doc.Members, m)
	}
	if a, ok := r.Current(); ok {
		name := a.SourcePath()
		doc.Current = &name
	}
	return doc
}

// Save writes the session's metadata to path and returns the path written.
// ".json" is appended when path has no extension.
func (r *Registry) Save(path string) (string, error) {
	path = storage.SessionPath(path)
	if err := storage.Write(path, r.Snapshot()); err != nil {
		return "", err
	}
	r.log.Info("Saved session", zap.String("path", path), zap.Int("members", len(r.artworks)))
	return path, nil
}

// Restored describes a completed Restore.
type Restored struct {
	// Path is the session file that was read.
	Path string
	// MissingCurrent is the saved current image when no restored member
	// matched it. The registry then has no current artwork.
	MissingCurrent string
}

/*
Restore replaces the whole registry with the session saved at path.

Every member is re-decoded from its source path and its saved target size and
enhancement factors are reapplied. The new state is built aside and swapped in
only when every member loaded, so any failure leaves the registry untouched.
A member whose source no longer exists, locally or remotely, fails with
ErrNotFound. A saved current that matches no member leaves current unset and
is reported through Restored.MissingCurrent.
*/
func (r *Registry) Restore(ctx context.Context, path string) (Restored, error) {
	path = storage.SessionPath(path)
	doc, err := storage.Read(path)
	if err != nil {
		return Restored{}, err
	}

	staged := make([]*artwork.Artwork, 0, len(doc.Members))
	for _, m := range doc.Members {
		a, err := r.restoreMember(ctx, m)
		if err != nil {
			return Restored{}, err
		}
		staged = append(staged, a)
	}

	res := Restored{Path: path}
	current := ""
	if doc.Current != nil {
		for _, a := range staged {
			if a.SourcePath() == *doc.Current {
				current = a.ID()
				break
			}
		}
		if current == "" {
			r.log.Warn("Could not find the saved current image", zap.String("current", *doc.Current))
			res.MissingCurrent = *doc.Current
		}
	}

	r.artworks, r.current = staged, current
	r.log.Info("Restored session", zap.String("path", path), zap.Int("members", len(staged)))
	return res, nil
}

func (r *Registry) restoreMember(ctx context.Context, m models.Member) (*artwork.Artwork, error) {
	alias := ""
	if m.Alias != nil {
		alias = *m.Alias
	}

	var width, height int
	if m.TargetWidth != nil {
		width = *m.TargetWidth
	}
	if m.TargetHeight != nil {
		height = *m.TargetHeight
	}
	if width > r.maxDimension || height > r.maxDimension {
		return nil, fmt.Errorf("%w: %s: target %dx%d exceeds the maximum of %d",
			ErrMalformedSession, m.FileName, width, height, r.maxDimension)
	}

	a, err := r.build(ctx, m.FileName, alias)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, images.ErrRemoteNotFound) {
			return nil, fmt.Errorf("%w: %w", &ResolveError{Kind: ErrNotFound, Name: m.FileName}, err)
		}
		return nil, err
	}

	if width > 0 || height > 0 {
		if err := r.resize(a, width, height); err != nil {
			return nil, err
		}
	}

	if m.Brightness != nil && *m.Brightness != 1 {
		if err := a.Enhance(images.Brightness, *m.Brightness); err != nil {
			return nil, err
		}
	}
	if m.Contrast != nil && *m.Contrast != 1 {
		if err := a.Enhance(images.Contrast, *m.Contrast); err != nil {
			return nil, err
		}
	}
	return a, nil
}
