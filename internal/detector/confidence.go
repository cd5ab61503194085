package detector

// Confidence scoring is isolated into named, independently testable
// functions so thresholds can be tuned without touching detection or
// filtering logic. All results are clamped to [0, 1].

// PoleConfidence scores a pole candidate from its solidity and elongation.
// Tall solid structures approach the 0.9 ceiling; squat or ragged ones
// score low.
func PoleConfidence(solidity, aspect float64) float64 {
	return clamp01(min(0.9, solidity*aspect*0.1))
}

// RectSignConfidence scores a rectangular-sign candidate from its fill
// ratio (contour area over bounding-box area).
func RectSignConfidence(rectangularity float64) float64 {
	return clamp01(min(0.8, rectangularity*0.8))
}

// CircleSignConfidence scores a circular-sign candidate from its edge
// support: the fraction of the expected circumference backed by edge votes.
func CircleSignConfidence(support float64) float64 {
	return clamp01(support)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
