package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"pitchdash/ingestion/internal/metrics"
	"pitchdash/ingestion/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// ErrNoTable is returned when a leaderboard page has no data table
var ErrNoTable = errors.New("no leaderboard table found")

// Savant fetches Baseball Savant leaderboard pages
type Savant struct {
	http *resty.Client
}

// NewSavant creates a leaderboard client with the given per-request timeout
func NewSavant(timeout time.Duration) *Savant {
	client := resty.New()
	client.SetHeader("User-Agent", browserUserAgent)
	client.SetTimeout(timeout)

	return &Savant{http: client}
}

// FetchLeaderboard downloads a leaderboard page and converts its table
func (s *Savant) FetchLeaderboard(ctx context.Context, url string) (*models.Table, error) {
	start := time.Now()
	res, err := s.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		metrics.RecordAPICall("savant", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	metrics.RecordAPICall("savant", strconv.Itoa(res.StatusCode()), time.Since(start).Seconds())

	if !res.IsSuccess() {
		return nil, fmt.Errorf("leaderboard returned status %d", res.StatusCode())
	}

	table, err := ParseLeaderboard(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("columns", len(table.Header)).
		Int("rows", len(table.Rows)).
		Msg("Leaderboard scraped")

	return table, nil
}

// ParseLeaderboard converts the first data table of a page into a Table.
// The first non-empty row becomes the header.
func ParseLeaderboard(r io.Reader) (*models.Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse leaderboard html: %w", err)
	}

	table := doc.Find("table").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.AttrOr("class", ""), "Table")
	}).First()
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})

	if len(rows) == 0 {
		return nil, ErrNoTable
	}

	return &models.Table{Header: rows[0], Rows: rows[1:]}, nil
}
