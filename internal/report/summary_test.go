package report

import (
	"bytes"
	"strings"
	"testing"

	"pitchdash/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	s := models.NewJoinSummary()
	s.Add(models.Assignment{Team: "NYM", Tier: models.TierAPI})
	s.Add(models.Assignment{Team: "ATL", Tier: models.TierStatic})
	s.Add(models.Assignment{Team: "ATL", Tier: models.TierAPI})
	s.Add(models.Assignment{Team: "Free Agent", Tier: models.TierDefault})

	var buf bytes.Buffer
	Render(&buf, s, "Free Agent")
	out := buf.String()

	assert.Contains(t, out, "default (Free Agent)")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "RESOLVED")

	atl := strings.Index(out, "ATL")
	nym := strings.Index(out, "NYM")
	assert.True(t, atl > 0 && nym > atl, "Teams are sorted by code")
	assert.NotContains(t, out[strings.Index(out, "Players per team"):], "Free Agent")
}
