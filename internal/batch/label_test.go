package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartmap-tools/holderscan/internal/labeler"
	"github.com/smartmap-tools/holderscan/internal/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLabeler() *labeler.Labeler {
	return labeler.New(labeler.NewOracleTable(map[string]labeler.OracleEntry{
		"H100": {Material: "kov", Type: "stĺp značky samostatný", Confidence: 0.92},
		"H205": {Material: "betón", Type: "stĺp verejného osvetlenia", Confidence: 0.80},
	}))
}

func TestLabelRun(t *testing.T) {
	report := LabelRun([]string{"H100", "H205", "H999"}, testLabeler(), router.DefaultConfig())

	require.Len(t, report.Items, 3)
	assert.Equal(t, 3, report.Summary.Total)

	// output follows input order
	assert.Equal(t, "H100", report.Items[0].HolderID)
	assert.Equal(t, "H205", report.Items[1].HolderID)
	assert.Equal(t, "H999", report.Items[2].HolderID)

	// oracle hit at 0.92 auto-fills
	assert.Equal(t, router.TierAutoFill, report.Items[0].Tier)
	assert.Equal(t, "DMNB (AI: 0.92)", report.Items[0].TrackingNote)

	// oracle hit at 0.80 goes to suggest-review
	assert.Equal(t, router.TierSuggestReview, report.Items[1].Tier)

	// fallback at 0.55 goes to manual review
	assert.Equal(t, labeler.SourcePattern, report.Items[2].Source)
	assert.Equal(t, router.TierManualReview, report.Items[2].Tier)
	assert.Equal(t, "DMNB (Pattern: 0.55)", report.Items[2].TrackingNote)

	assert.Equal(t, 2, report.Summary.PerSource[labeler.SourceOracle])
	assert.Equal(t, 1, report.Summary.PerSource[labeler.SourcePattern])
	assert.Equal(t, 1, report.Summary.PerTier["auto-fill"])
	assert.Equal(t, 1, report.Summary.PerTier["suggest-review"])
	assert.Equal(t, 1, report.Summary.PerTier["manual-review"])
}

func TestLabelRunEmpty(t *testing.T) {
	report := LabelRun(nil, testLabeler(), router.DefaultConfig())
	assert.Empty(t, report.Items)
	assert.Equal(t, 0, report.Summary.Total)
}

func TestWriteLabelReport(t *testing.T) {
	report := LabelRun([]string{"H100"}, testLabeler(), router.DefaultConfig())
	path := filepath.Join(t.TempDir(), "labels.json")
	require.NoError(t, WriteLabelReport(report, path))

	data, err := os.ReadFile(path) //nolint:gosec // test-owned path
	require.NoError(t, err)
	var decoded LabelReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Items, 1)
	assert.Equal(t, 1, decoded.Summary.PerTier["auto-fill"])
}
