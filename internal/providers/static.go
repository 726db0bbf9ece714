package providers

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"pitchdash/ingestion/internal/models"
)

//go:embed known_players.json
var knownPlayersJSON []byte

// StaticTable maps MLB player IDs to team abbreviations
type StaticTable map[int]string

// ParseStaticTable decodes a JSON object of "playerID": "TEAM" pairs
func ParseStaticTable(data []byte) (StaticTable, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal static table: %w", err)
	}

	table := make(StaticTable, len(raw))
	for key, team := range raw {
		id, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("static table key %q is not a player id: %w", key, err)
		}
		team = strings.TrimSpace(team)
		if team == "" {
			continue
		}
		table[id] = team
	}
	return table, nil
}

// LoadStaticTable reads a static table file
func LoadStaticTable(path string) (StaticTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read static table: %w", err)
	}
	return ParseStaticTable(data)
}

// DefaultStaticTable returns the known-players table shipped with the module
func DefaultStaticTable() StaticTable {
	table, err := ParseStaticTable(knownPlayersJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded known_players.json is invalid: %v", err))
	}
	return table
}

// Static answers from a fixed id -> team table
type Static struct {
	table StaticTable
}

// NewStatic creates the static table provider
func NewStatic(table StaticTable) *Static {
	return &Static{table: table}
}

func (s *Static) Tier() models.Tier { return models.TierStatic }
func (s *Static) Kind() KeyKind     { return ByID }

func (s *Static) Lookup(_ context.Context, q Query) (string, error) {
	return s.table[q.PlayerID], nil
}
