package heatmap

// Blur applies a separable box blur of half-width blurPx.
//
// The horizontal pass averages each cell over [x-blurPx, x+blurPx] clipped to
// the row; the vertical pass does the same over columns of the horizontal
// result. Clipped windows divide by the number of cells actually covered, so
// borders are not darkened. blurPx <= 0 returns a copy.
//
// The result is the same for any worker count.
func Blur(buf *Buffer, blurPx, workers int) (*Buffer, error) {
	if blurPx <= 0 {
		return buf.Clone(), nil
	}

	w, h := buf.Width, buf.Height
	horiz := &Buffer{Width: w, Height: h, Data: make([]float64, w*h)}

	err := forEachBand(h, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			src := buf.Data[y*w : (y+1)*w]
			dst := horiz.Data[y*w : (y+1)*w]
			boxRow(src, dst, blurPx)
		}
	})
	if err != nil {
		return nil, err
	}

	out := &Buffer{Width: w, Height: h, Data: make([]float64, w*h)}
	err = forEachBand(h, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			top := maxInt(0, y-blurPx)
			bottom := minInt(h-1, y+blurPx)
			inv := 1 / float64(bottom-top+1)

			dst := out.Data[y*w : (y+1)*w]
			for yy := top; yy <= bottom; yy++ {
				src := horiz.Data[yy*w : (yy+1)*w]
				for x, v := range src {
					dst[x] += v
				}
			}
			for x := range dst {
				dst[x] *= inv
			}
		}
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// boxRow writes the clipped moving average of src into dst.
//
// Windows are summed directly so an all-zero window stays exactly zero.
func boxRow(src, dst []float64, r int) {
	n := len(src)
	for x := 0; x < n; x++ {
		lo := maxInt(0, x-r)
		hi := minInt(n-1, x+r)
		var sum float64
		for _, v := range src[lo : hi+1] {
			sum += v
		}
		dst[x] = sum / float64(hi-lo+1)
	}
}
