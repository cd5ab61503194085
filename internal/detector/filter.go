package detector

// Filter drops candidates violating their class's thresholds in the
// profile. Filtering is a pure predicate: candidates are kept or dropped,
// never modified. All bounds are inclusive, so a value exactly at a
// threshold passes; this keeps behavior stable across adjacent sensitivity
// levels.
func Filter(candidates []Candidate, prof SensitivityProfile) []Candidate {
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if passes(c, prof) {
			kept = append(kept, c)
		}
	}
	return kept
}

func passes(c Candidate, prof SensitivityProfile) bool {
	switch c.Class {
	case ClassPole:
		return passesPole(c, prof.Pole)
	case ClassRectSign:
		return passesRectSign(c, prof.RectSign)
	case ClassCircleSign:
		return passesCircle(c, prof.Circle)
	default:
		return false
	}
}

func passesPole(c Candidate, t PoleThresholds) bool {
	h := c.Box.Height()
	w := c.Box.Width()
	return h >= t.MinHeight && h <= t.MaxHeight &&
		c.Box.AspectRatio() >= t.MinAspect &&
		c.Box.Area() >= t.MinArea &&
		w <= t.MaxWidth &&
		c.ShapeFit >= t.MinSolidity
}

func passesRectSign(c Candidate, t RectSignThresholds) bool {
	w := c.Box.Width()
	h := c.Box.Height()
	if h <= 0 {
		return false
	}
	aspect := w / h
	area := c.Box.Area()
	return w >= t.MinWidth && w <= t.MaxWidth &&
		h >= t.MinHeight && h <= t.MaxHeight &&
		area >= t.MinArea && area <= t.MaxArea &&
		aspect >= t.MinAspect && aspect <= t.MaxAspect &&
		c.ShapeFit >= t.MinSolidity
}

func passesCircle(c Candidate, t CircleThresholds) bool {
	// The box spans the circle's diameter.
	radius := c.Box.Width() / 2
	return radius >= t.MinRadius && radius <= t.MaxRadius &&
		c.ShapeFit >= t.MinSupport
}
