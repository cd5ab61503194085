package detector

import "github.com/smartmap-tools/holderscan/internal/utils"

// Moore 8-neighborhood in clockwise order: E, SE, S, SW, W, NW, N, NE.
var (
	mooreDX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	mooreDY = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
)

// traceBoundary extracts the boundary polygon of a labeled component using
// Moore-neighbor tracing, restricted to the component's bounding box.
// Collinear intermediate points are dropped as the trace proceeds.
// Returned points are pixel-center coordinates.
func traceBoundary(labels []int, w, h, label int, st compStats) []utils.Point {
	if label <= 0 || len(labels) != w*h {
		return nil
	}

	isLabel := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		return labels[y*w+x] == label
	}

	sx, sy, ok := findBoundaryStart(isLabel, st)
	if !ok {
		return nil
	}

	pts := make([]utils.Point, 0, 64)
	addPoint := func(x, y int) {
		p := utils.Point{X: float64(x), Y: float64(y)}
		if n := len(pts); n >= 2 {
			a, b := pts[n-2], pts[n-1]
			// Drop b when a, b, p are collinear.
			if (b.X-a.X)*(p.Y-b.Y)-(b.Y-a.Y)*(p.X-b.X) == 0 {
				pts = pts[:n-1]
			}
		}
		pts = append(pts, p)
	}

	cx, cy := sx, sy
	bx, by := sx-1, sy // backtrack starts left of the start pixel
	startCx, startCy, startBx, startBy := cx, cy, bx, by
	addPoint(cx, cy)

	maxSteps := w*h*4 + 8
	for range maxSteps {
		nx, ny, nbx, nby, found := nextBoundaryPixel(isLabel, cx, cy, bx, by)
		if !found {
			break
		}
		bx, by = nbx, nby
		cx, cy = nx, ny
		if last := pts[len(pts)-1]; last.X != float64(cx) || last.Y != float64(cy) {
			addPoint(cx, cy)
		}
		if cx == startCx && cy == startCy && bx == startBx && by == startBy {
			break
		}
	}

	// Remove a duplicated closing point if present.
	if n := len(pts); n >= 2 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	return pts
}

// findBoundaryStart scans the component's bounding box for the first pixel
// that has a 4-connected background neighbor.
func findBoundaryStart(isLabel func(int, int) bool, st compStats) (int, int, bool) {
	for y := st.minY; y <= st.maxY; y++ {
		for x := st.minX; x <= st.maxX; x++ {
			if !isLabel(x, y) {
				continue
			}
			if !isLabel(x+1, y) || !isLabel(x-1, y) || !isLabel(x, y+1) || !isLabel(x, y-1) {
				return x, y, true
			}
		}
	}
	// Fallback: any labeled pixel (single-pixel or fully interior cases).
	for y := st.minY; y <= st.maxY; y++ {
		for x := st.minX; x <= st.maxX; x++ {
			if isLabel(x, y) {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

// nextBoundaryPixel finds the next component pixel scanning the Moore
// neighborhood clockwise from the current backtrack position.
func nextBoundaryPixel(isLabel func(int, int) bool, cx, cy, bx, by int) (int, int, int, int, bool) {
	start := 0
	for i := range 8 {
		if mooreDX[i] == bx-cx && mooreDY[i] == by-cy {
			start = (i + 1) % 8
			break
		}
	}
	for k := range 8 {
		i := (start + k) % 8
		tx, ty := cx+mooreDX[i], cy+mooreDY[i]
		if isLabel(tx, ty) {
			return tx, ty, cx, cy, true
		}
		bx, by = tx, ty
	}
	return 0, 0, bx, by, false
}
