package detector

import (
	"fmt"
	"image"

	"github.com/smartmap-tools/holderscan/internal/utils"
)

// ShapeClass identifies the kind of structure a detection pass looks for.
// The class set is closed; each class has exactly one detection function
// bound at initialization time.
type ShapeClass int

const (
	ClassPole ShapeClass = iota
	ClassRectSign
	ClassCircleSign
)

// Classes lists all shape classes in their canonical output order.
var Classes = []ShapeClass{ClassPole, ClassRectSign, ClassCircleSign}

// String returns the wire name of the shape class.
func (c ShapeClass) String() string {
	switch c {
	case ClassPole:
		return "pole"
	case ClassRectSign:
		return "rectangular-sign"
	case ClassCircleSign:
		return "circular-sign"
	default:
		return "unknown"
	}
}

// ParseShapeClass converts a wire name back to a ShapeClass.
func ParseShapeClass(s string) (ShapeClass, error) {
	for _, c := range Classes {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown shape class %q", s)
}

// Candidate is a single detection: a class-tagged axis-aligned box with a
// confidence score and the raw geometric fit measure the score was derived
// from (solidity for poles, rectangularity for rectangular signs, edge
// support for circles). Candidates are value types and never mutated after
// creation.
type Candidate struct {
	Class      ShapeClass
	Box        utils.Box
	Confidence float64
	ShapeFit   float64
}

// DetectFunc runs one detection pass over an image and returns raw
// candidates. A pass is a pure function of the image and profile; malformed
// input yields an empty result rather than an error.
type DetectFunc func(img image.Image, prof SensitivityProfile) []Candidate

// PassFor returns the detection function for a shape class. The binding is
// static; there is no runtime dispatch on class names.
func PassFor(class ShapeClass) (DetectFunc, error) {
	switch class {
	case ClassPole:
		return DetectPoles, nil
	case ClassRectSign:
		return DetectRectSigns, nil
	case ClassCircleSign:
		return DetectCircleSigns, nil
	default:
		return nil, fmt.Errorf("no detection pass for class %d", int(class))
	}
}

// Detect runs the pass for the given class.
func Detect(img image.Image, class ShapeClass, prof SensitivityProfile) ([]Candidate, error) {
	pass, err := PassFor(class)
	if err != nil {
		return nil, err
	}
	return pass(img, prof), nil
}

// imageUsable reports whether an image can feed a detection pass.
func imageUsable(img image.Image) bool {
	if img == nil {
		return false
	}
	b := img.Bounds()
	return b.Dx() > 0 && b.Dy() > 0
}
