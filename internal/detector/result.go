package detector

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"
)

// DetectionResultJSON is a serializable representation of one image's
// surviving candidate set.
type DetectionResultJSON struct {
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Profile    string          `json:"profile"`
	Candidates []CandidateJSON `json:"candidates"`
}

type CandidateJSON struct {
	Class      string  `json:"class"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	W          int     `json:"w"`
	H          int     `json:"h"`
	Confidence float64 `json:"confidence"`
}

// CandidatesToJSON converts candidates to JSON with image dimensions and
// the profile name used for the run.
func CandidatesToJSON(cands []Candidate, width, height int, profile string) ([]byte, error) {
	out := DetectionResultJSON{Width: width, Height: height, Profile: profile}
	out.Candidates = make([]CandidateJSON, 0, len(cands))
	for _, c := range cands {
		out.Candidates = append(out.Candidates, CandidateJSON{
			Class:      c.Class.String(),
			X:          int(c.Box.MinX),
			Y:          int(c.Box.MinY),
			W:          int(c.Box.Width()),
			H:          int(c.Box.Height()),
			Confidence: c.Confidence,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

// CandidatesFromJSON parses a detection result document.
func CandidatesFromJSON(data []byte) (DetectionResultJSON, error) {
	var res DetectionResultJSON
	err := json.Unmarshal(data, &res)
	return res, err
}

// ValidateCandidates performs sanity checks against image dimensions:
// positive box sizes, bounds inside the image extent, confidence in [0,1].
func ValidateCandidates(cands []Candidate, width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New("invalid image dimensions for validation")
	}
	for i, c := range cands {
		if c.Box.Width() <= 0 || c.Box.Height() <= 0 {
			return fmt.Errorf("candidate %d has non-positive box size", i)
		}
		if c.Box.MinX < 0 || c.Box.MinY < 0 ||
			c.Box.MaxX > float64(width) || c.Box.MaxY > float64(height) {
			return fmt.Errorf("candidate %d box out of bounds", i)
		}
		if c.Confidence < 0 || c.Confidence > 1 {
			return fmt.Errorf("candidate %d confidence %f outside [0,1]", i, c.Confidence)
		}
	}
	return nil
}

// classColor returns a fixed review color per class.
func classColor(class ShapeClass) color.Color {
	var hex string
	switch class {
	case ClassPole:
		hex = "#2ecc40" // green
	case ClassRectSign:
		hex = "#0074d9" // blue
	case ClassCircleSign:
		hex = "#ff851b" // orange
	default:
		hex = "#ff4136"
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{255, 0, 0, 255}
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}
}

// VisualizeCandidates draws candidate outlines onto a copy of img for human
// review, one color per class.
func VisualizeCandidates(img image.Image, cands []Candidate, thickness int) *image.RGBA {
	if thickness <= 0 {
		thickness = 2
	}
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)

	for _, c := range cands {
		drawBoxOutline(dst, c.Box.ToRect(b), classColor(c.Class), thickness)
	}
	return dst
}

func drawBoxOutline(dst *image.RGBA, r image.Rectangle, col color.Color, thickness int) {
	for t := range thickness {
		x1, y1 := r.Min.X+t, r.Min.Y+t
		x2, y2 := r.Max.X-1-t, r.Max.Y-1-t
		if x2 < x1 || y2 < y1 {
			return
		}
		for x := x1; x <= x2; x++ {
			dst.Set(x, y1, col)
			dst.Set(x, y2, col)
		}
		for y := y1; y <= y2; y++ {
			dst.Set(x1, y, col)
			dst.Set(x2, y, col)
		}
	}
}
