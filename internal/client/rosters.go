package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pitchdash/ingestion/internal/metrics"
	"pitchdash/ingestion/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// RosterPage is a club abbreviation and its roster page URL
type RosterPage struct {
	Team string
	URL  string
}

// TeamRosterPages lists the 30 MLB clubs and their official roster pages
var TeamRosterPages = []RosterPage{
	{"ARI", "https://www.mlb.com/dbacks/roster"},
	{"OAK", "https://www.mlb.com/athletics/roster"},
	{"ATL", "https://www.mlb.com/braves/roster"},
	{"BAL", "https://www.mlb.com/orioles/roster"},
	{"BOS", "https://www.mlb.com/redsox/roster"},
	{"CHC", "https://www.mlb.com/cubs/roster"},
	{"CWS", "https://www.mlb.com/whitesox/roster"},
	{"CIN", "https://www.mlb.com/reds/roster"},
	{"CLE", "https://www.mlb.com/guardians/roster"},
	{"COL", "https://www.mlb.com/rockies/roster"},
	{"DET", "https://www.mlb.com/tigers/roster"},
	{"HOU", "https://www.mlb.com/astros/roster"},
	{"KC", "https://www.mlb.com/royals/roster"},
	{"LAA", "https://www.mlb.com/angels/roster"},
	{"LAD", "https://www.mlb.com/dodgers/roster"},
	{"MIA", "https://www.mlb.com/marlins/roster"},
	{"MIL", "https://www.mlb.com/brewers/roster"},
	{"MIN", "https://www.mlb.com/twins/roster"},
	{"NYM", "https://www.mlb.com/mets/roster"},
	{"NYY", "https://www.mlb.com/yankees/roster"},
	{"PHI", "https://www.mlb.com/phillies/roster"},
	{"PIT", "https://www.mlb.com/pirates/roster"},
	{"SD", "https://www.mlb.com/padres/roster"},
	{"SF", "https://www.mlb.com/giants/roster"},
	{"SEA", "https://www.mlb.com/mariners/roster"},
	{"STL", "https://www.mlb.com/cardinals/roster"},
	{"TB", "https://www.mlb.com/rays/roster"},
	{"TEX", "https://www.mlb.com/rangers/roster"},
	{"TOR", "https://www.mlb.com/bluejays/roster"},
	{"WSH", "https://www.mlb.com/nationals/roster"},
}

// player links look like /player/663623 or /player/jake-irvin-663623
var playerLinkRegex = regexp.MustCompile(`/player/(?:[^/?#]*-)?(\d+)(?:[/?#]|$)`)

// PlayerIDFromURL extracts the MLB player ID from a player page URL
func PlayerIDFromURL(href string) (int, bool) {
	groups := playerLinkRegex.FindStringSubmatch(href)
	if len(groups) < 2 {
		return 0, false
	}
	id, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// RosterScraper fetches and parses club roster pages
type RosterScraper struct {
	http  *resty.Client
	pages []RosterPage
	delay time.Duration
}

// NewRosterScraper creates a roster scraper. delay is the pause between clubs.
func NewRosterScraper(pages []RosterPage, timeout, delay time.Duration) *RosterScraper {
	client := resty.New()
	client.SetHeader("User-Agent", browserUserAgent)
	client.SetTimeout(timeout)

	return &RosterScraper{
		http:  client,
		pages: pages,
		delay: delay,
	}
}

// WithRetries retries a club page up to n more times on transport errors,
// 429 and 5xx responses, backing off exponentially between attempts
func (s *RosterScraper) WithRetries(n int) *RosterScraper {
	s.http.
		SetRetryCount(n).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(16 * time.Second).
		AddRetryCondition(func(res *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return res.StatusCode() == http.StatusTooManyRequests || res.StatusCode() >= 500
		})
	return s
}

// FetchRoster downloads one club's roster page and returns its players
func (s *RosterScraper) FetchRoster(ctx context.Context, page RosterPage) ([]models.RosterEntry, error) {
	start := time.Now()
	res, err := s.http.R().
		SetContext(ctx).
		Get(page.URL)
	if err != nil {
		metrics.RecordAPICall("roster", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to fetch roster for %s: %w", page.Team, err)
	}
	metrics.RecordAPICall("roster", strconv.Itoa(res.StatusCode()), time.Since(start).Seconds())

	if !res.IsSuccess() {
		return nil, fmt.Errorf("roster for %s returned status %d", page.Team, res.StatusCode())
	}

	return ParseRoster(bytes.NewReader(res.Body()), page.Team)
}

// ParseRoster extracts every linked player from a roster page
func ParseRoster(r io.Reader, team string) ([]models.RosterEntry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse roster html: %w", err)
	}

	var entries []models.RosterEntry
	index := make(map[int]int)

	doc.Find(`a[href*="/player/"]`).Each(func(_ int, a *goquery.Selection) {
		id, ok := PlayerIDFromURL(a.AttrOr("href", ""))
		if !ok {
			return
		}
		name := strings.Join(strings.Fields(a.Text()), " ")

		// headshot and name links point at the same player
		if i, seen := index[id]; seen {
			if entries[i].Name == "" {
				entries[i].Name = name
			}
			return
		}
		index[id] = len(entries)
		entries = append(entries, models.RosterEntry{PlayerID: id, Name: name, Team: team})
	})

	return entries, nil
}

// ScrapeAll fetches every configured roster page. Clubs that fail are logged
// and skipped.
func (s *RosterScraper) ScrapeAll(ctx context.Context) (*models.RosterSnapshot, error) {
	snap := &models.RosterSnapshot{GeneratedAt: time.Now().UTC()}

	for i, page := range s.pages {
		if i > 0 && s.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.delay):
			}
		}

		entries, err := s.FetchRoster(ctx, page)
		if err != nil {
			metrics.RecordError("roster_scraper", "fetch")
			log.Warn().Err(err).Str("team", page.Team).Msg("Failed to scrape roster, skipping")
			continue
		}

		if len(entries) == 0 {
			log.Warn().Str("team", page.Team).Msg("No players found on roster page (may need manual review)")
			continue
		}

		log.Info().
			Str("team", page.Team).
			Int("players", len(entries)).
			Msgf("[%d/%d] Roster scraped", i+1, len(s.pages))
		snap.Entries = append(snap.Entries, entries...)
	}

	if len(snap.Entries) == 0 {
		return nil, fmt.Errorf("no players found across %d roster pages", len(s.pages))
	}

	return snap, nil
}
