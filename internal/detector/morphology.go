package detector

// dilateMask dilates a binary mask with a kw x kh rectangular kernel.
func dilateMask(mask []bool, w, h, kw, kh int) []bool {
	if kw <= 1 && kh <= 1 {
		return mask
	}
	halfW, halfH := kw/2, kh/2
	out := make([]bool, len(mask))
	for y := range h {
		for x := range w {
			set := false
			for ky := -halfH; ky <= halfH && !set; ky++ {
				ny := y + ky
				if ny < 0 || ny >= h {
					continue
				}
				for kx := -halfW; kx <= halfW; kx++ {
					nx := x + kx
					if nx >= 0 && nx < w && mask[ny*w+nx] {
						set = true
						break
					}
				}
			}
			out[y*w+x] = set
		}
	}
	return out
}

// erodeMask erodes a binary mask with a kw x kh rectangular kernel.
// Pixels whose kernel window extends past the image keep only in-bounds
// neighbors in consideration.
func erodeMask(mask []bool, w, h, kw, kh int) []bool {
	if kw <= 1 && kh <= 1 {
		return mask
	}
	halfW, halfH := kw/2, kh/2
	out := make([]bool, len(mask))
	for y := range h {
		for x := range w {
			keep := true
			for ky := -halfH; ky <= halfH && keep; ky++ {
				ny := y + ky
				if ny < 0 || ny >= h {
					continue
				}
				for kx := -halfW; kx <= halfW; kx++ {
					nx := x + kx
					if nx >= 0 && nx < w && !mask[ny*w+nx] {
						keep = false
						break
					}
				}
			}
			out[y*w+x] = keep
		}
	}
	return out
}

// closeMask performs morphological closing (dilate then erode), bridging
// small gaps along the kernel's orientation. A tall thin kernel joins the
// broken edge fragments of vertical structures into one component.
func closeMask(mask []bool, w, h, kw, kh int) []bool {
	return erodeMask(dilateMask(mask, w, h, kw, kh), w, h, kw, kh)
}
