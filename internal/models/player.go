package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TeamColumn is the header of the inserted team column
const TeamColumn = "Team"

// ErrMalformedTable is returned when a table lacks the name and identifier columns
var ErrMalformedTable = errors.New("malformed input table")

// Table is a header plus data rows read from a flat file
type Table struct {
	Header []string
	Rows   [][]string
}

// Validate checks the header carries at least the name and identifier columns
func (t *Table) Validate() error {
	if t == nil || len(t.Header) == 0 {
		return fmt.Errorf("%w: missing header row", ErrMalformedTable)
	}
	if len(t.Header) < 2 {
		return fmt.Errorf("%w: expected name and identifier columns, got %d column(s)", ErrMalformedTable, len(t.Header))
	}
	return nil
}

// ColumnIndex returns the index of the named column, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// PlayerRecord is one input row viewed as a player
type PlayerRecord struct {
	Name       string
	Identifier string
	Row        []string
}

// RecordFromRow builds a PlayerRecord from a row whose first column is the
// player name and second column the player identifier. Missing columns are empty.
func RecordFromRow(row []string) PlayerRecord {
	rec := PlayerRecord{Row: row}
	if len(row) > 0 {
		rec.Name = row[0]
	}
	if len(row) > 1 {
		rec.Identifier = row[1]
	}
	return rec
}

// PlayerID parses the identifier as an MLB player ID
func (r PlayerRecord) PlayerID() (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(r.Identifier))
	if err != nil {
		return 0, false
	}
	return id, true
}
