package detector

import (
	"image"

	"github.com/anthonynsimon/bild/blur"

	"github.com/smartmap-tools/holderscan/internal/utils"
)

// Edge hysteresis threshold pairs per pass, matching the tuning the
// detection heuristics were calibrated against.
const (
	poleEdgeLow    = 80.0
	poleEdgeHigh   = 200.0
	signEdgeLow    = 100.0
	signEdgeHigh   = 200.0
	circleEdgeLow  = 100.0
	circleEdgeHigh = 200.0
)

// blurredGrayPlane applies a Gaussian blur and converts to an 8-bit
// luminance plane. A radius of 0 skips blurring.
func blurredGrayPlane(img image.Image, radius float64) ([]uint8, int, int) {
	if radius > 0 {
		img = blur.Gaussian(img, radius)
	}
	return utils.GrayPlane(img)
}

// edgeMap computes a binary edge mask from a luminance plane using Sobel
// gradients with two-threshold hysteresis: pixels at or above high are
// edges, pixels at or above low become edges only when connected to one.
func edgeMap(plane []uint8, w, h int, low, high float64) []bool {
	if len(plane) != w*h || w < 3 || h < 3 {
		return make([]bool, w*h)
	}

	mag := sobelMagnitude(plane, w, h)

	strong := make([]bool, w*h)
	weak := make([]bool, w*h)
	queue := make([]int, 0, w*h/8)
	for i, m := range mag {
		switch {
		case m >= high:
			strong[i] = true
			queue = append(queue, i)
		case m >= low:
			weak[i] = true
		}
	}

	// Promote weak pixels 8-connected to a strong pixel.
	for len(queue) > 0 {
		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				ni := ny*w + nx
				if weak[ni] && !strong[ni] {
					strong[ni] = true
					queue = append(queue, ni)
				}
			}
		}
	}
	return strong
}

// sobelMagnitude computes per-pixel gradient magnitude with 3x3 Sobel
// kernels. Border pixels have zero magnitude.
func sobelMagnitude(plane []uint8, w, h int) []float64 {
	mag := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			tl := float64(plane[(y-1)*w+x-1])
			tc := float64(plane[(y-1)*w+x])
			tr := float64(plane[(y-1)*w+x+1])
			ml := float64(plane[y*w+x-1])
			mr := float64(plane[y*w+x+1])
			bl := float64(plane[(y+1)*w+x-1])
			bc := float64(plane[(y+1)*w+x])
			br := float64(plane[(y+1)*w+x+1])

			gx := (tr + 2*mr + br) - (tl + 2*ml + bl)
			gy := (bl + 2*bc + br) - (tl + 2*tc + tr)
			if gx < 0 {
				gx = -gx
			}
			if gy < 0 {
				gy = -gy
			}
			// L1 gradient magnitude.
			mag[y*w+x] = gx + gy
		}
	}
	return mag
}
