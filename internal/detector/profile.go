package detector

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile names accepted by ProfileByName.
const (
	ProfileConservative = "conservative"
	ProfileNormal       = "normal"
	ProfileAggressive   = "aggressive"
)

// PoleThresholds bounds accepted pole candidates. All bounds are inclusive.
type PoleThresholds struct {
	MinHeight   float64 `yaml:"min_height"`
	MaxHeight   float64 `yaml:"max_height"`
	MinAspect   float64 `yaml:"min_aspect"`
	MinArea     float64 `yaml:"min_area"`
	MaxWidth    float64 `yaml:"max_width"`
	MinSolidity float64 `yaml:"min_solidity"`
}

// RectSignThresholds bounds accepted rectangular-sign candidates.
type RectSignThresholds struct {
	MinWidth    float64 `yaml:"min_width"`
	MaxWidth    float64 `yaml:"max_width"`
	MinHeight   float64 `yaml:"min_height"`
	MaxHeight   float64 `yaml:"max_height"`
	MinArea     float64 `yaml:"min_area"`
	MaxArea     float64 `yaml:"max_area"`
	MinAspect   float64 `yaml:"min_aspect"`
	MaxAspect   float64 `yaml:"max_aspect"`
	MinSolidity float64 `yaml:"min_solidity"`
}

// CircleThresholds bounds accepted circular-sign candidates.
type CircleThresholds struct {
	MinRadius  float64 `yaml:"min_radius"`
	MaxRadius  float64 `yaml:"max_radius"`
	MinSupport float64 `yaml:"min_support"`
}

// SensitivityProfile is a named, immutable bundle of per-class detection
// thresholds trading recall against precision. It is chosen once per run
// and passed down explicitly.
type SensitivityProfile struct {
	Name     string             `yaml:"name"`
	Pole     PoleThresholds     `yaml:"pole"`
	RectSign RectSignThresholds `yaml:"rect_sign"`
	Circle   CircleThresholds   `yaml:"circle"`
}

// ConservativeProfile trades recall for precision: fewer, stronger candidates.
func ConservativeProfile() SensitivityProfile {
	return SensitivityProfile{
		Name: ProfileConservative,
		Pole: PoleThresholds{
			MinHeight: 150, MaxHeight: 300, MinAspect: 5, MinArea: 1200, MaxWidth: 40,
			MinSolidity: 0.75,
		},
		RectSign: RectSignThresholds{
			MinWidth: 40, MaxWidth: 110, MinHeight: 40, MaxHeight: 110,
			MinArea: 1500, MaxArea: 7000, MinAspect: 0.6, MaxAspect: 2.0,
			MinSolidity: 0.7,
		},
		Circle: CircleThresholds{MinRadius: 30, MaxRadius: 55, MinSupport: 0.65},
	}
}

// NormalProfile is the default balance.
func NormalProfile() SensitivityProfile {
	return SensitivityProfile{
		Name: ProfileNormal,
		Pole: PoleThresholds{
			MinHeight: 120, MaxHeight: 350, MinAspect: 4, MinArea: 800, MaxWidth: 50,
			MinSolidity: 0.7,
		},
		RectSign: RectSignThresholds{
			MinWidth: 30, MaxWidth: 120, MinHeight: 30, MaxHeight: 120,
			MinArea: 1000, MaxArea: 8000, MinAspect: 0.5, MaxAspect: 2.5,
			MinSolidity: 0.6,
		},
		Circle: CircleThresholds{MinRadius: 25, MaxRadius: 60, MinSupport: 0.6},
	}
}

// AggressiveProfile trades precision for recall.
func AggressiveProfile() SensitivityProfile {
	return SensitivityProfile{
		Name: ProfileAggressive,
		Pole: PoleThresholds{
			MinHeight: 80, MaxHeight: 400, MinAspect: 3, MinArea: 500, MaxWidth: 60,
			MinSolidity: 0.6,
		},
		RectSign: RectSignThresholds{
			MinWidth: 20, MaxWidth: 140, MinHeight: 20, MaxHeight: 140,
			MinArea: 600, MaxArea: 10000, MinAspect: 0.4, MaxAspect: 3.0,
			MinSolidity: 0.5,
		},
		Circle: CircleThresholds{MinRadius: 20, MaxRadius: 70, MinSupport: 0.5},
	}
}

// ProfileByName resolves one of the built-in profiles. Unknown names are a
// configuration error; there is no silent default.
func ProfileByName(name string) (SensitivityProfile, error) {
	switch name {
	case ProfileConservative:
		return ConservativeProfile(), nil
	case ProfileNormal:
		return NormalProfile(), nil
	case ProfileAggressive:
		return AggressiveProfile(), nil
	default:
		return SensitivityProfile{}, fmt.Errorf("unknown sensitivity profile %q (want %s, %s or %s)",
			name, ProfileConservative, ProfileNormal, ProfileAggressive)
	}
}

// ProfilesFromYAML parses custom profile bundles from YAML. The document is
// a mapping from profile name to a threshold bundle; parsed profiles carry
// the mapping key as their name. Bundles may be partial: omitted thresholds
// inherit from the built-in profile of the same name, or from the normal
// profile for new names, so a sparse override never zeroes a bound.
func ProfilesFromYAML(data []byte) (map[string]SensitivityProfile, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	profiles := make(map[string]SensitivityProfile, len(raw))
	for name, node := range raw {
		base, err := ProfileByName(name)
		if err != nil {
			base = NormalProfile()
		}
		if err := node.Decode(&base); err != nil {
			return nil, fmt.Errorf("parse profile %q: %w", name, err)
		}
		base.Name = name
		profiles[name] = base
	}
	return profiles, nil
}

// LoadProfiles reads custom profiles from a YAML file.
func LoadProfiles(path string) (map[string]SensitivityProfile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: profile path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	return ProfilesFromYAML(data)
}

// ResolveProfile looks a name up against custom profiles first, then the
// built-ins. Custom profiles may shadow built-in names.
func ResolveProfile(name string, custom map[string]SensitivityProfile) (SensitivityProfile, error) {
	if p, ok := custom[name]; ok {
		return p, nil
	}
	return ProfileByName(name)
}
