package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/asciistudio/internal/models"
)

func ptr[T any](v T) *T { return &v }

func sampleSession() *models.Session {
	return &models.Session{
		Members: []models.Member{
			{
				FileName:     "a.png",
				TargetWidth:  ptr(20),
				TargetHeight: ptr(10),
				Brightness:   ptr(1.0),
				Contrast:     ptr(1.0),
			},
			{
				FileName:   "b.png",
				Alias:      ptr("logo"),
				Brightness: ptr(1.3),
				Contrast:   ptr(0.2),
			},
		},
		Current: ptr("a.png"),
	}
}

func TestSessionPath(t *testing.T) {
	tests := []struct {
		in, expected string
	}{
		{"s1", "s1.json"},
		{"s1.json", "s1.json"},
		{"dir/s1.yaml", "dir/s1.yaml"},
	}
	for _, tt := range tests {
		if got := SessionPath(tt.in); got != tt.expected {
			t.Errorf("SessionPath(%q) = %q, expected %q", tt.in, got, tt.expected)
		}
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".yaml", ".parquet"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session"+ext)
			doc := sampleSession()

			if err := Write(path, doc); err != nil {
				t.Fatalf("Write: %v", err)
			}
			loaded, err := Read(path)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !reflect.DeepEqual(doc, loaded) {
				t.Errorf("round trip mismatch:\nwrote %+v\nread  %+v", doc, loaded)
			}
		})
	}
}

func TestWriteJSONUsesNullForUnset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := Write(path, sampleSession()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, want := range []string{`"alias": null`, `"target_width": null`, `"current": "a.png"`, `    "members": [`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %s in:\n%s", want, data)
		}
	}
}

func TestWriteEmptySession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := Write(path, &models.Session{Members: []models.Member{}}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	doc, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(doc.Members) != 0 || doc.Current != nil {
		t.Errorf("Expected empty session, got %+v", doc)
	}
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "{members: ["},
		{name: "missing members", content: `{"current": null}`},
		{name: "members not a list", content: `{"members": 3, "current": null}`},
		{name: "missing file name", content: `{"members": [{"brightness": 1, "contrast": 1}], "current": null}`},
		{name: "missing brightness", content: `{"members": [{"file_name": "a.png", "contrast": 1}], "current": null}`},
		{name: "zero brightness", content: `{"members": [{"file_name": "a.png", "brightness": 0, "contrast": 1}], "current": null}`},
		{name: "negative contrast", content: `{"members": [{"file_name": "a.png", "brightness": 1, "contrast": -2}], "current": null}`},
		{name: "negative width", content: `{"members": [{"file_name": "a.png", "target_width": -5, "target_height": 4, "brightness": 1, "contrast": 1}], "current": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.json")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			_, err := Read(path)
			if !errors.Is(err, ErrMalformedSession) {
				t.Errorf("Expected ErrMalformedSession, got %v", err)
			}
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrIOFailure) {
		t.Fatalf("Expected ErrIOFailure, got %v", err)
	}
}

func TestWriteIntoMissingDirectory(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "missing", "s.json"), sampleSession())
	if !errors.Is(err, ErrIOFailure) {
		t.Fatalf("Expected ErrIOFailure, got %v", err)
	}
}

func TestRowsMarksFirstCurrentOnly(t *testing.T) {
	doc := sampleSession()
	doc.Members = append(doc.Members, models.Member{FileName: "a.png", Brightness: ptr(1.0), Contrast: ptr(1.0)})

	rows := Rows(doc)
	if !rows[0].Current || rows[1].Current || rows[2].Current {
		t.Errorf("Expected only the first a.png row to be current, got %+v", rows)
	}
	if rows[1].Alias != "logo" || rows[1].TargetWidth != 0 {
		t.Errorf("unexpected row %+v", rows[1])
	}
}
