package storage

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/lehigh-university-libraries/asciistudio/internal/models"
)

// Rows flattens a session into Parquet rows.
func Rows(doc *models.Session) []models.MemberRow {
	rows := make([]models.MemberRow, 0, len(doc.Members))
	currentMarked := false
	for _, m := range doc.Members {
		row := models.MemberRow{FileName: m.FileName}
		if m.Alias != nil {
			row.Alias = *m.Alias
		}
		if m.TargetWidth != nil {
			row.TargetWidth = int64(*m.TargetWidth)
		}
		if m.TargetHeight != nil {
			row.TargetHeight = int64(*m.TargetHeight)
		}
		if m.Brightness != nil {
			row.Brightness = *m.Brightness
		}
		if m.Contrast != nil {
			row.Contrast = *m.Contrast
		}
		// current is keyed by file name, so only the first match carries it
		if !currentMarked && doc.Current != nil && *doc.Current == m.FileName {
			row.Current = true
			currentMarked = true
		}
		rows = append(rows, row)
	}
	return rows
}

// ExportParquet writes doc as one Parquet row per member.
func ExportParquet(path string, doc *models.Session) error {
	if err := parquet.WriteFile(path, Rows(doc)); err != nil {
		return fmt.Errorf("%w: failed to write parquet: %w", ErrIOFailure, err)
	}
	return nil
}

// ReadParquet loads a session previously written by ExportParquet.
func ReadParquet(path string) (*models.Session, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to stat file: %w", ErrIOFailure, err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open parquet: %w", ErrMalformedSession, err)
	}

	reader := parquet.NewGenericReader[models.MemberRow](pf)
	defer reader.Close()

	doc := &models.Session{Members: []models.Member{}}
	rows := make([]models.MemberRow, 128)
	for {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			doc.Members = append(doc.Members, memberFromRow(row))
			if row.Current && doc.Current == nil {
				name := row.FileName
				doc.Current = &name
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: failed to read parquet rows: %w", ErrMalformedSession, err)
			}
			break
		}
	}

	if err := Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func memberFromRow(row models.MemberRow) models.Member {
	m := models.Member{FileName: row.FileName}
	if row.Alias != "" {
		alias := row.Alias
		m.Alias = &alias
	}
	if row.TargetWidth > 0 {
		w := int(row.TargetWidth)
		m.TargetWidth = &w
	}
	if row.TargetHeight > 0 {
		h := int(row.TargetHeight)
		m.TargetHeight = &h
	}
	b, c := row.Brightness, row.Contrast
	m.Brightness, m.Contrast = &b, &c
	return m
}
