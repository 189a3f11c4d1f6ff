package heatmap

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// forEachBand splits [0, rows) into at most workers contiguous bands and runs
// fn on each. With one worker fn runs on the calling goroutine. A panic in a
// band is recovered and returned as an error.
func forEachBand(rows, workers int, fn func(y0, y1 int)) error {
	if rows <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > rows {
		workers = rows
	}

	if workers == 1 {
		return runBand(0, rows, fn)
	}

	var g errgroup.Group
	size := (rows + workers - 1) / workers
	for y0 := 0; y0 < rows; y0 += size {
		y0, y1 := y0, minInt(rows, y0+size)
		g.Go(func() error {
			return runBand(y0, y1, fn)
		})
	}
	return g.Wait()
}

func runBand(y0, y1 int, fn func(y0, y1 int)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in rows %d-%d: %v", y0, y1, r)
		}
	}()
	fn(y0, y1)
	return nil
}
