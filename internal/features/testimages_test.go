package features

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// createUniformGray returns a w x h image filled with v.
func createUniformGray(t *testing.T, w, h int, v uint8) *image.Gray {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// createSquareGray returns a black w x h image with a white square covering
// [x0, x1) x [y0, y1).
func createSquareGray(t *testing.T, w, h, x0, y0, x1, y1 int) *image.Gray {
	t.Helper()
	img := createUniformGray(t, w, h, 0)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return img
}

// createPatternGray returns a deterministic textured image.
func createPatternGray(t *testing.T, w, h int) *image.Gray {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := (x*x*7 + y*13 + x*y*3) % 256
			if (x/8+y/8)%2 == 0 {
				v = 255 - v
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	return img
}

// nearAny reports whether kp lies within dist pixels of one of pts.
func nearAny(kp Keypoint, pts []image.Point, dist float64) bool {
	for _, p := range pts {
		if math.Hypot(kp.X-float64(p.X), kp.Y-float64(p.Y)) <= dist {
			return true
		}
	}
	return false
}
