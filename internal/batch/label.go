package batch

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/smartmap-tools/holderscan/internal/labeler"
	"github.com/smartmap-tools/holderscan/internal/router"
)

// LabelItem is one holder's labeled result with its routing decision and
// the tracking annotation the downstream actuator writes alongside it.
type LabelItem struct {
	labeler.LabeledResult
	Tier         router.Tier `json:"tier"`
	TrackingNote string      `json:"tracking_note"`
}

// LabelSummary aggregates a labeling session by source and tier.
type LabelSummary struct {
	Total     int            `json:"total"`
	PerSource map[string]int `json:"per_source"`
	PerTier   map[string]int `json:"per_tier"`
}

// LabelReport is the session report for a labeling run.
type LabelReport struct {
	Items   []LabelItem  `json:"items"`
	Summary LabelSummary `json:"summary"`
}

// LabelRun assigns labels to every holder id and routes each result.
// Output order follows input order.
func LabelRun(holderIDs []string, l *labeler.Labeler, routing router.Config) *LabelReport {
	report := &LabelReport{
		Items: make([]LabelItem, 0, len(holderIDs)),
		Summary: LabelSummary{
			PerSource: map[string]int{},
			PerTier:   map[string]int{},
		},
	}
	for _, id := range holderIDs {
		result := l.Assign(id)
		tier := router.Route(result.Confidence, routing)
		report.Items = append(report.Items, LabelItem{
			LabeledResult: result,
			Tier:          tier,
			TrackingNote:  result.TrackingNote(),
		})
		report.Summary.Total++
		report.Summary.PerSource[result.Source]++
		report.Summary.PerTier[tier.String()]++
	}
	return report
}

// WriteLabelReport writes a labeling report as indented JSON.
func WriteLabelReport(report *LabelReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode label report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write label report: %w", err)
	}
	return nil
}
