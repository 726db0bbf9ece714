// Package tablefile reads and writes the flat CSV files the jobs exchange.
package tablefile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pitchdash/ingestion/internal/models"
)

// ErrMalformedInput is returned for empty files and headers without the
// name and identifier columns
var ErrMalformedInput = models.ErrMalformedTable

const utf8BOM = "\ufeff"

// Read loads a CSV file. Rows may have any number of fields.
func Read(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	table, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return table, nil
}

// Parse decodes CSV from r and validates the header
func Parse(r io.Reader) (*models.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrMalformedInput)
	}

	header := records[0]
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	table := &models.Table{Header: header, Rows: records[1:]}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Write stores table at path. The file is written under a temporary name in
// the same directory and renamed into place, so path either keeps its old
// content or holds the complete new table.
func Write(path string, table *models.Table) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(table.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}
