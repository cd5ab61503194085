package pipeline

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/smartmap-tools/holderscan/internal/detector"
)

// ClassLimits holds the per-class caps applied between filtering and NMS.
type ClassLimits struct {
	Pole       int `mapstructure:"pole" yaml:"pole" json:"pole"`
	RectSign   int `mapstructure:"rect_sign" yaml:"rect_sign" json:"rect_sign"`
	CircleSign int `mapstructure:"circle_sign" yaml:"circle_sign" json:"circle_sign"`
}

// OverlapThresholds holds the per-class IoU thresholds for NMS.
type OverlapThresholds struct {
	Pole       float64 `mapstructure:"pole" yaml:"pole" json:"pole"`
	RectSign   float64 `mapstructure:"rect_sign" yaml:"rect_sign" json:"rect_sign"`
	CircleSign float64 `mapstructure:"circle_sign" yaml:"circle_sign" json:"circle_sign"`
}

// Config holds everything one orchestration run depends on. It is an
// explicit parameter object: no process-wide mutable detection state exists,
// so independent runs are safe to execute concurrently across images.
type Config struct {
	Profile  detector.SensitivityProfile
	Limits   ClassLimits
	Overlaps OverlapThresholds
}

// DefaultLimits returns the per-class candidate caps.
func DefaultLimits() ClassLimits {
	return ClassLimits{Pole: 2, RectSign: 3, CircleSign: 2}
}

// DefaultOverlaps returns the per-class NMS IoU thresholds.
func DefaultOverlaps() OverlapThresholds {
	return OverlapThresholds{Pole: 0.3, RectSign: 0.2, CircleSign: 0.3}
}

func (l ClassLimits) forClass(c detector.ShapeClass) int {
	switch c {
	case detector.ClassPole:
		return l.Pole
	case detector.ClassRectSign:
		return l.RectSign
	case detector.ClassCircleSign:
		return l.CircleSign
	default:
		return 0
	}
}

func (o OverlapThresholds) forClass(c detector.ShapeClass) float64 {
	switch c {
	case detector.ClassPole:
		return o.Pole
	case detector.ClassRectSign:
		return o.RectSign
	case detector.ClassCircleSign:
		return o.CircleSign
	default:
		return 0
	}
}

// Orchestrator runs the full detection pipeline for single images:
// per class Detect -> Filter -> cap -> NMS, then concatenation in canonical
// class order. Runs are idempotent; the surviving set is never mutated.
type Orchestrator struct {
	cfg    Config
	passes map[detector.ShapeClass]detector.DetectFunc
}

// Builder constructs an Orchestrator with fluent configuration.
type Builder struct {
	profileName  string
	profilesFile string
	limits       ClassLimits
	overlaps     OverlapThresholds
}

// NewBuilder creates an orchestrator builder with defaults.
func NewBuilder() *Builder {
	return &Builder{
		profileName: detector.ProfileNormal,
		limits:      DefaultLimits(),
		overlaps:    DefaultOverlaps(),
	}
}

// WithProfile sets the sensitivity profile name.
func (b *Builder) WithProfile(name string) *Builder {
	if name != "" {
		b.profileName = name
	}
	return b
}

// WithProfilesFile points the builder at a YAML file of custom profiles
// that may shadow the built-in names.
func (b *Builder) WithProfilesFile(path string) *Builder {
	b.profilesFile = path
	return b
}

// WithLimits overrides the per-class caps.
func (b *Builder) WithLimits(l ClassLimits) *Builder {
	b.limits = l
	return b
}

// WithOverlaps overrides the per-class NMS thresholds.
func (b *Builder) WithOverlaps(o OverlapThresholds) *Builder {
	b.overlaps = o
	return b
}

// Build resolves the profile and binds one detection pass per shape class.
// An unknown profile name fails here, before any image is touched.
func (b *Builder) Build() (*Orchestrator, error) {
	custom := map[string]detector.SensitivityProfile{}
	if b.profilesFile != "" {
		loaded, err := detector.LoadProfiles(b.profilesFile)
		if err != nil {
			return nil, err
		}
		custom = loaded
	}
	prof, err := detector.ResolveProfile(b.profileName, custom)
	if err != nil {
		return nil, err
	}

	passes := make(map[detector.ShapeClass]detector.DetectFunc, len(detector.Classes))
	for _, class := range detector.Classes {
		pass, err := detector.PassFor(class)
		if err != nil {
			return nil, fmt.Errorf("bind detection pass: %w", err)
		}
		passes[class] = pass
	}

	slog.Debug("Orchestrator initialized",
		"profile", prof.Name,
		"caps", fmt.Sprintf("%d/%d/%d", b.limits.Pole, b.limits.RectSign, b.limits.CircleSign))

	return &Orchestrator{
		cfg:    Config{Profile: prof, Limits: b.limits, Overlaps: b.overlaps},
		passes: passes,
	}, nil
}

// Profile returns the resolved sensitivity profile.
func (o *Orchestrator) Profile() detector.SensitivityProfile {
	return o.cfg.Profile
}

// Run processes one image through all shape classes and returns the final
// candidate set grouped by class in canonical order. A malformed image
// yields an empty set; per-class failures never abort the other classes.
func (o *Orchestrator) Run(img image.Image) []detector.Candidate {
	var result []detector.Candidate
	for _, class := range detector.Classes {
		raw := o.passes[class](img, o.cfg.Profile)
		filtered := detector.Filter(raw, o.cfg.Profile)
		capped := detector.CapByConfidence(filtered, o.cfg.Limits.forClass(class))
		kept := detector.NonMaxSuppression(capped, o.cfg.Overlaps.forClass(class))

		slog.Debug("detection pass complete",
			"class", class.String(),
			"raw", len(raw),
			"filtered", len(filtered),
			"kept", len(kept))

		result = append(result, kept...)
	}
	return result
}
