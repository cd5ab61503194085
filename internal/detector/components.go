package detector

// compStats holds per-component pixel statistics gathered during labeling.
type compStats struct {
	count int
	minX  int
	minY  int
	maxX  int
	maxY  int
}

func (c compStats) width() int  { return c.maxX - c.minX + 1 }
func (c compStats) height() int { return c.maxY - c.minY + 1 }

// connectedComponents labels 8-connected components of set pixels in the
// mask. It returns per-component stats and the label plane (labels start
// at 1; 0 means background).
func connectedComponents(mask []bool, w, h int) ([]compStats, []int) {
	labels := make([]int, w*h)
	var comps []compStats
	next := 1

	stack := make([]int, 0, 256)
	for start, set := range mask {
		if !set || labels[start] != 0 {
			continue
		}
		st := compStats{minX: start % w, minY: start / w, maxX: start % w, maxY: start / w}
		labels[start] = next
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%w, i/w
			st.count++
			if x < st.minX {
				st.minX = x
			}
			if y < st.minY {
				st.minY = y
			}
			if x > st.maxX {
				st.maxX = x
			}
			if y > st.maxY {
				st.maxY = y
			}
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					ni := ny*w + nx
					if mask[ni] && labels[ni] == 0 {
						labels[ni] = next
						stack = append(stack, ni)
					}
				}
			}
		}
		comps = append(comps, st)
		next++
	}
	return comps, labels
}
