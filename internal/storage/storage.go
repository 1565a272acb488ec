// Package storage reads and writes session documents.
//
// JSON is the default format; .yaml/.yml paths use YAML and .parquet paths a
// flat one-row-per-member table. Text formats are written to a temporary file
// in the target directory which is then renamed into place.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/asciistudio/internal/models"
)

var (
	ErrMalformedSession = errors.New("malformed session")
	ErrIOFailure        = errors.New("session I/O failure")
)

// Format is a session document encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatParquet Format = "parquet"
)

// SessionPath appends ".json" when path has no extension.
func SessionPath(path string) string {
	if filepath.Ext(path) == "" {
		return path + ".json"
	}
	return path
}

// FormatFor picks the encoding from the file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".parquet":
		return FormatParquet
	default:
		return FormatJSON
	}
}

// Write encodes doc to path, choosing the format from the extension.
func Write(path string, doc *models.Session) error {
	var data []byte
	var err error

	switch FormatFor(path) {
	case FormatParquet:
		return ExportParquet(path, doc)
	case FormatYAML:
		data, err = yaml.Marshal(doc)
	default:
		data, err = json.MarshalIndent(doc, "", "    ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("%w: failed to encode session: %w", ErrIOFailure, err)
	}

	return WriteAtomic(path, data)
}

// Read decodes and validates the session document at path.
func Read(path string) (*models.Session, error) {
	if FormatFor(path) == FormatParquet {
		return ReadParquet(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	var doc models.Session
	if FormatFor(path) == FormatYAML {
		err = decodeYAML(data, &doc)
	} else {
		err = decodeJSON(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedSession, path, err)
	}

	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func decodeJSON(data []byte, doc *models.Session) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if raw, ok := probe["members"]; !ok || string(raw) == "null" {
		return errors.New(`missing "members" list`)
	}
	return json.Unmarshal(data, doc)
}

func decodeYAML(data []byte, doc *models.Session) error {
	var probe map[string]yaml.Node
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return err
	}
	if node, ok := probe["members"]; !ok || node.Kind != yaml.SequenceNode {
		return errors.New(`missing "members" list`)
	}
	return yaml.Unmarshal(data, doc)
}

// Validate checks the structural invariants a restore depends on.
func Validate(doc *models.Session) error {
	for i, m := range doc.Members {
		if strings.TrimSpace(m.FileName) == "" {
			return malformedf("member %d: file_name is required", i)
		}
		if m.Brightness == nil || m.Contrast == nil {
			return malformedf("member %d (%s): brightness and contrast are required", i, m.FileName)
		}
		if !(*m.Brightness > 0) {
			return malformedf("member %d (%s): brightness must be > 0, got %v", i, m.FileName, *m.Brightness)
		}
		if !(*m.Contrast >= 0) {
			return malformedf("member %d (%s): contrast must be >= 0, got %v", i, m.FileName, *m.Contrast)
		}
		if m.TargetWidth != nil && *m.TargetWidth <= 0 {
			return malformedf("member %d (%s): target_width must be positive", i, m.FileName)
		}
		if m.TargetHeight != nil && *m.TargetHeight <= 0 {
			return malformedf("member %d (%s): target_height must be positive", i, m.FileName)
		}
	}
	return nil
}

func malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedSession, fmt.Sprintf(format, args...))
}

// WriteAtomic writes data to a temporary file next to path and renames it
// into place.
func WriteAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return fail(err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}
