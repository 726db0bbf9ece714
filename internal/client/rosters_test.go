package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"pitchdash/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rosterHTML = `<html><body>
<table class="roster__table">
  <tr><td><a href="/player/jake-irvin-663623"><img src="x.png"></a></td>
      <td><a href="/player/jake-irvin-663623">Jake  Irvin</a></td></tr>
  <tr><td><a href="https://www.mlb.com/player/650644">Aaron Civale</a></td></tr>
  <tr><td><a href="/player/">Broken</a></td></tr>
  <tr><td><a href="/news/some-story-12345">News</a></td></tr>
</table>
</body></html>`

func TestPlayerIDFromURL(t *testing.T) {
	cases := map[string]int{
		"/player/663623":                     663623,
		"/player/jake-irvin-663623":          663623,
		"https://www.mlb.com/player/650644/": 650644,
		"/player/lynch-iv-663738?tab=stats":  663738,
	}
	for href, want := range cases {
		id, ok := PlayerIDFromURL(href)
		require.True(t, ok, href)
		assert.Equal(t, want, id, href)
	}

	for _, href := range []string{"/player/", "/player/jake-irvin", "/team/123", ""} {
		_, ok := PlayerIDFromURL(href)
		assert.False(t, ok, href)
	}
}

func TestParseRoster(t *testing.T) {
	entries, err := ParseRoster(strings.NewReader(rosterHTML), "ATL")
	require.NoError(t, err)

	assert.Equal(t, []models.RosterEntry{
		{PlayerID: 663623, Name: "Jake Irvin", Team: "ATL"},
		{PlayerID: 650644, Name: "Aaron Civale", Team: "ATL"},
	}, entries)
}

func TestRosterScraper_ScrapeAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/braves/roster":
			w.Write([]byte(rosterHTML))
		case "/mets/roster":
			w.Write([]byte(`<a href="/player/tylor-megill-656731">Tylor Megill</a>`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	pages := []RosterPage{
		{"ATL", srv.URL + "/braves/roster"},
		{"CLE", srv.URL + "/guardians/roster"},
		{"NYM", srv.URL + "/mets/roster"},
	}
	scraper := NewRosterScraper(pages, time.Second, 0)

	snap, err := scraper.ScrapeAll(context.Background())
	require.NoError(t, err, "A failing club should not abort the scrape")

	byID := snap.ByID()
	assert.Len(t, byID, 3)
	assert.Equal(t, "ATL", byID[663623])
	assert.Equal(t, "NYM", byID[656731])
	assert.False(t, snap.GeneratedAt.IsZero())
}

func TestRosterScraper_AllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	scraper := NewRosterScraper([]RosterPage{{"ATL", srv.URL}}, time.Second, 0)
	_, err := scraper.ScrapeAll(context.Background())
	assert.Error(t, err)
}

func TestRosterScraper_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`<a href="/player/656731">Tylor Megill</a>`))
	}))
	defer srv.Close()

	scraper := NewRosterScraper([]RosterPage{{"NYM", srv.URL}}, time.Second, 0).WithRetries(2)
	snap, err := scraper.ScrapeAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "NYM", snap.ByID()[656731])
	assert.EqualValues(t, 2, calls.Load())
}
