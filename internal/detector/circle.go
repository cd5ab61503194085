package detector

import (
	"image"
	"math"
	"sort"

	"github.com/smartmap-tools/holderscan/internal/utils"
)

const (
	// Gaussian blur radius ahead of the circle edge map (9x9 kernel).
	circleBlurRadius = 4.0
	// Vote angle step in degrees.
	circleVoteStep = 10
	// Local-maximum suppression window half-size in the accumulator.
	circlePeakWindow = 5
	// Minimum distance between accepted circle centers.
	circleMinCenterDist = 80.0
)

type circlePeak struct {
	x, y, r int
	support float64
}

// DetectCircleSigns runs a Hough-transform circle search over the edge map.
// Each edge pixel votes for candidate centers at every radius in the
// profile's range; accumulator peaks with enough circumference support
// become raw candidates. Nearby centers collapse to the strongest peak.
func DetectCircleSigns(img image.Image, prof SensitivityProfile) []Candidate {
	if !imageUsable(img) {
		return nil
	}
	plane, w, h := blurredGrayPlane(img, circleBlurRadius)
	edges := edgeMap(plane, w, h, circleEdgeLow, circleEdgeHigh)

	minR := int(prof.Circle.MinRadius)
	maxR := int(prof.Circle.MaxRadius)
	if minR < 1 || maxR < minR || w <= 2*minR || h <= 2*minR {
		return nil
	}

	var peaks []circlePeak
	for r := minR; r <= maxR; r++ {
		acc := voteCenters(edges, w, h, r)
		threshold := prof.Circle.MinSupport * float64(2*r)
		peaks = append(peaks, findPeaks(acc, w, h, r, threshold)...)
	}
	peaks = mergeNearbyPeaks(peaks)

	candidates := make([]Candidate, 0, len(peaks))
	for _, p := range peaks {
		box := utils.NewBox(
			float64(p.x-p.r), float64(p.y-p.r),
			float64(p.x+p.r), float64(p.y+p.r),
		).Clamp(w, h)
		candidates = append(candidates, Candidate{
			Class:      ClassCircleSign,
			Box:        box,
			Confidence: CircleSignConfidence(p.support),
			ShapeFit:   p.support,
		})
	}
	return candidates
}

// voteCenters accumulates Hough votes for circle centers at one radius.
func voteCenters(edges []bool, w, h, r int) []int {
	acc := make([]int, w*h)
	for i, isEdge := range edges {
		if !isEdge {
			continue
		}
		x, y := i%w, i/w
		for angle := 0; angle < 360; angle += circleVoteStep {
			rad := float64(angle) * math.Pi / 180
			cx := x - int(float64(r)*math.Cos(rad))
			cy := y - int(float64(r)*math.Sin(rad))
			if cx >= 0 && cx < w && cy >= 0 && cy < h {
				acc[cy*w+cx]++
			}
		}
	}
	return acc
}

// findPeaks extracts local accumulator maxima whose vote count meets the
// support threshold, keeping centers that leave the circle fully inside
// the image.
func findPeaks(acc []int, w, h, r int, threshold float64) []circlePeak {
	var peaks []circlePeak
	for y := r; y < h-r; y++ {
		for x := r; x < w-r; x++ {
			votes := acc[y*w+x]
			if float64(votes) < threshold {
				continue
			}
			if !isLocalMax(acc, w, h, x, y) {
				continue
			}
			support := float64(votes) / float64(2*r)
			peaks = append(peaks, circlePeak{x: x, y: y, r: r, support: support})
		}
	}
	return peaks
}

func isLocalMax(acc []int, w, h, x, y int) bool {
	v := acc[y*w+x]
	for dy := -circlePeakWindow; dy <= circlePeakWindow; dy++ {
		for dx := -circlePeakWindow; dx <= circlePeakWindow; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if nx >= 0 && nx < w && ny >= 0 && ny < h && acc[ny*w+nx] > v {
				return false
			}
		}
	}
	return true
}

// mergeNearbyPeaks keeps the strongest peak among those whose centers fall
// within circleMinCenterDist of each other. The sort is stable so equal
// support resolves to the earlier detection.
func mergeNearbyPeaks(peaks []circlePeak) []circlePeak {
	if len(peaks) <= 1 {
		return peaks
	}
	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].support > peaks[j].support
	})
	kept := make([]circlePeak, 0, len(peaks))
	for _, p := range peaks {
		dup := false
		for _, k := range kept {
			dx := float64(p.x - k.x)
			dy := float64(p.y - k.y)
			if math.Hypot(dx, dy) < circleMinCenterDist {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, p)
		}
	}
	return kept
}
