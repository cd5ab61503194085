// Package router classifies labeled results into action tiers by
// confidence. Routing is a pure, total function over [0,1].
package router

import "fmt"

// Tier is the action derived from a confidence score.
type Tier int

const (
	TierAutoFill Tier = iota
	TierSuggestReview
	TierManualReview
)

// String returns the wire name of the tier.
func (t Tier) String() string {
	switch t {
	case TierAutoFill:
		return "auto-fill"
	case TierSuggestReview:
		return "suggest-review"
	case TierManualReview:
		return "manual-review"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler for JSON output.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(text []byte) error {
	switch string(text) {
	case "auto-fill":
		*t = TierAutoFill
	case "suggest-review":
		*t = TierSuggestReview
	case "manual-review":
		*t = TierManualReview
	default:
		return fmt.Errorf("unknown tier %q", string(text))
	}
	return nil
}

// Config holds the two routing cutoffs.
type Config struct {
	HighCutoff float64 `mapstructure:"high_cutoff" yaml:"high_cutoff" json:"high_cutoff"`
	LowCutoff  float64 `mapstructure:"low_cutoff" yaml:"low_cutoff" json:"low_cutoff"`
}

// DefaultConfig returns the historical cutoffs.
func DefaultConfig() Config {
	return Config{HighCutoff: 0.90, LowCutoff: 0.75}
}

// Validate checks cutoff ordering and range.
func (c Config) Validate() error {
	if c.LowCutoff < 0 || c.HighCutoff > 1 {
		return fmt.Errorf("router cutoffs %.2f/%.2f outside [0,1]", c.LowCutoff, c.HighCutoff)
	}
	if c.LowCutoff > c.HighCutoff {
		return fmt.Errorf("router low cutoff %.2f exceeds high cutoff %.2f", c.LowCutoff, c.HighCutoff)
	}
	return nil
}

// Route maps a confidence to its action tier. Boundaries are inclusive on
// the upper side: confidence exactly at a cutoff takes the stronger tier.
func Route(confidence float64, cfg Config) Tier {
	switch {
	case confidence >= cfg.HighCutoff:
		return TierAutoFill
	case confidence >= cfg.LowCutoff:
		return TierSuggestReview
	default:
		return TierManualReview
	}
}
