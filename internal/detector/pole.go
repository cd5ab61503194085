package detector

import (
	"image"

	"github.com/smartmap-tools/holderscan/internal/utils"
)

const (
	// Vertical closing kernel joining broken pole edge fragments.
	poleKernelW = 1
	poleKernelH = 30
	// Components below this pixel count are edge noise.
	poleMinComponentPixels = 20
	// Horizontal margin added around a pole's bounding box.
	poleBoxMargin = 5.0
)

// DetectPoles runs the vertical-structure pass: edge map, vertical
// morphological closing, connected components, then one raw candidate per
// surviving component. Thresholding against the profile is the geometric
// filter's job; this pass only attaches confidence and fit measures.
func DetectPoles(img image.Image, _ SensitivityProfile) []Candidate {
	if !imageUsable(img) {
		return nil
	}
	plane, w, h := blurredGrayPlane(img, 0)
	edges := edgeMap(plane, w, h, poleEdgeLow, poleEdgeHigh)
	mask := closeMask(edges, w, h, poleKernelW, poleKernelH)
	comps, labels := connectedComponents(mask, w, h)

	candidates := make([]Candidate, 0, len(comps))
	for i, st := range comps {
		if st.count < poleMinComponentPixels {
			continue
		}
		solidity := componentSolidity(labels, w, h, i+1, st)
		aspect := float64(st.height()) / float64(st.width())
		box := utils.NewBox(
			float64(st.minX)-poleBoxMargin,
			float64(st.minY),
			float64(st.maxX+1)+poleBoxMargin,
			float64(st.maxY+1),
		).Clamp(w, h)
		candidates = append(candidates, Candidate{
			Class:      ClassPole,
			Box:        box,
			Confidence: PoleConfidence(solidity, aspect),
			ShapeFit:   solidity,
		})
	}
	return candidates
}

// componentSolidity measures how much of a component's convex hull its
// pixels fill. Degenerate hulls (lines, single pixels) count as fully solid.
func componentSolidity(labels []int, w, h, label int, st compStats) float64 {
	contour := traceBoundary(labels, w, h, label, st)
	hull := utils.ConvexHull(contour)
	hullArea := utils.PolygonArea(hull)
	if hullArea <= 0 {
		return 1.0
	}
	s := float64(st.count) / hullArea
	if s > 1 {
		s = 1
	}
	return s
}
