package detector

import (
	"image"

	"github.com/smartmap-tools/holderscan/internal/utils"
)

const (
	// Gaussian blur radius ahead of the sign edge map (7x7 kernel).
	rectBlurRadius = 3.0
	// Contour approximation tolerance as a fraction of the perimeter.
	rectApproxEpsilon = 0.01
	// Accepted corner counts for the simplified contour polygon.
	rectMinVertices = 4
	rectMaxVertices = 6
	// Components below this pixel count are edge noise.
	rectMinComponentPixels = 20
)

// DetectRectSigns runs the rectangular-contour pass: blur, edge map,
// connected components, contour tracing, and a Douglas-Peucker corner
// check. A component becomes a raw candidate only when its simplified
// contour has roughly four corners; confidence comes from the fill ratio
// of the contour against its bounding box.
func DetectRectSigns(img image.Image, _ SensitivityProfile) []Candidate {
	if !imageUsable(img) {
		return nil
	}
	plane, w, h := blurredGrayPlane(img, rectBlurRadius)
	edges := edgeMap(plane, w, h, signEdgeLow, signEdgeHigh)
	comps, labels := connectedComponents(edges, w, h)

	candidates := make([]Candidate, 0, len(comps))
	for i, st := range comps {
		if st.count < rectMinComponentPixels {
			continue
		}
		contour := traceBoundary(labels, w, h, i+1, st)
		if len(contour) < rectMinVertices {
			continue
		}
		epsilon := rectApproxEpsilon * utils.PolygonPerimeter(contour)
		approx := utils.SimplifyPolygon(contour, epsilon)
		if len(approx) < rectMinVertices || len(approx) > rectMaxVertices {
			continue
		}
		box := utils.NewBox(
			float64(st.minX), float64(st.minY),
			float64(st.maxX+1), float64(st.maxY+1),
		).Clamp(w, h)
		rectangularity := contourRectangularity(contour, box)
		candidates = append(candidates, Candidate{
			Class:      ClassRectSign,
			Box:        box,
			Confidence: RectSignConfidence(rectangularity),
			ShapeFit:   rectangularity,
		})
	}
	return candidates
}

// contourRectangularity is the contour's enclosed area over its bounding
// box area: 1.0 for a perfect axis-aligned rectangle, lower for ragged or
// diagonal shapes.
func contourRectangularity(contour []utils.Point, box utils.Box) float64 {
	boxArea := box.Area()
	if boxArea <= 0 {
		return 0
	}
	r := utils.PolygonArea(contour) / boxArea
	if r > 1 {
		r = 1
	}
	return r
}
