package features

import (
	"image"

	"github.com/pkg/errors"
)

// FASTType selects the segment-test circle and the number of contiguous
// pixels required on it.
type FASTType int

const (
	FAST916 FASTType = iota // 16-pixel circle, 9 contiguous
	FAST712                 // 12-pixel circle, 7 contiguous
	FAST58                  // 8-pixel circle, 5 contiguous
)

func (t FASTType) String() string {
	switch t {
	case FAST712:
		return "7_12"
	case FAST58:
		return "5_8"
	}
	return "9_16"
}

// MarshalText implements encoding.TextMarshaler.
func (t FASTType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *FASTType) UnmarshalText(text []byte) error {
	switch normalizeName(string(text)) {
	case "", "916", "TYPE916":
		*t = FAST916
	case "712", "TYPE712":
		*t = FAST712
	case "58", "TYPE58":
		*t = FAST58
	default:
		return errors.Wrapf(ErrInvalidParameter, "fast type %q", string(text))
	}
	return nil
}

var (
	circle16 = []image.Point{
		{0, -3}, {1, -3}, {2, -2}, {3, -1}, {3, 0}, {3, 1}, {2, 2}, {1, 3},
		{0, 3}, {-1, 3}, {-2, 2}, {-3, 1}, {-3, 0}, {-3, -1}, {-2, -2}, {-1, -3},
	}
	circle12 = []image.Point{
		{0, -2}, {1, -2}, {2, -1}, {2, 0}, {2, 1}, {1, 2},
		{0, 2}, {-1, 2}, {-2, 1}, {-2, 0}, {-2, -1}, {-1, -2},
	}
	circle8 = []image.Point{
		{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
	}
)

func (t FASTType) pattern() (circle []image.Point, contiguous, radius int) {
	switch t {
	case FAST712:
		return circle12, 7, 2
	case FAST58:
		return circle8, 5, 1
	}
	return circle16, 9, 3
}

// FASTConfig holds the FAST detector parameters.
type FASTConfig struct {
	// Threshold is the intensity difference between the centre pixel and
	// the circle pixels.
	Threshold         int      `json:"threshold"`
	NonMaxSuppression bool     `json:"nonmax_suppression"`
	Type              FASTType `json:"type"`
}

// DefaultFASTConfig returns threshold 80 on the 9_16 circle with
// non-maximum suppression.
func DefaultFASTConfig() FASTConfig {
	return FASTConfig{Threshold: 80, NonMaxSuppression: true, Type: FAST916}
}

// Validate checks parameter ranges.
func (c FASTConfig) Validate() error {
	if c.Threshold < 0 || c.Threshold > 255 {
		return errors.Wrapf(ErrInvalidParameter, "fast threshold %d", c.Threshold)
	}
	return nil
}

// fastKeypointSize is the support diameter assigned to FAST corners.
const fastKeypointSize = 7

// ExtractFAST runs the segment test on every pixel far enough from the
// border. A pixel is a corner when enough contiguous circle pixels are all
// brighter than centre+threshold or all darker than centre-threshold. The
// score is the summed absolute difference of the qualifying circle pixels.
func ExtractFAST(img *image.Gray, cfg FASTConfig) ([]Keypoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if img == nil {
		return []Keypoint{}, nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	circle, n, radius := cfg.Type.pattern()
	t := cfg.Threshold

	at := func(x, y int) int {
		return int(img.Pix[y*img.Stride+x])
	}

	scores := make([]float64, w*h)
	var found []image.Point
	states := make([]int, len(circle))
	for y := radius; y < h-radius; y++ {
		for x := radius; x < w-radius; x++ {
			p := at(x, y)
			for i, off := range circle {
				v := at(x+off.X, y+off.Y)
				switch {
				case v > p+t:
					states[i] = 1
				case v < p-t:
					states[i] = -1
				default:
					states[i] = 0
				}
			}
			sign := segmentSign(states, n)
			if sign == 0 {
				continue
			}
			var score float64
			for i, off := range circle {
				if states[i] == sign {
					d := at(x+off.X, y+off.Y) - p
					if d < 0 {
						d = -d
					}
					score += float64(d)
				}
			}
			scores[y*w+x] = score
			found = append(found, image.Pt(x, y))
		}
	}

	kps := make([]Keypoint, 0, len(found))
	for _, pt := range found {
		score := scores[pt.Y*w+pt.X]
		if cfg.NonMaxSuppression && !isLocalMax(scores, w, h, pt, score) {
			continue
		}
		kps = append(kps, Keypoint{
			X:        float64(pt.X),
			Y:        float64(pt.Y),
			Size:     fastKeypointSize,
			Angle:    -1,
			Response: score,
		})
	}
	return kps, nil
}

// segmentSign returns +1 or -1 when at least n contiguous entries of the
// circular slice states share that sign, and 0 otherwise.
func segmentSign(states []int, n int) int {
	m := len(states)
	for _, sign := range [...]int{1, -1} {
		run := 0
		for i := 0; i < m+n-1; i++ {
			if states[i%m] == sign {
				run++
				if run >= n {
					return sign
				}
			} else {
				run = 0
			}
		}
	}
	return 0
}

// isLocalMax reports whether score is strictly greater than every score in
// the 3x3 neighbourhood of pt.
func isLocalMax(scores []float64, w, h int, pt image.Point, score float64) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			x, y := pt.X+dx, pt.Y+dy
			if x < 0 || y < 0 || x >= w || y >= h {
				continue
			}
			if scores[y*w+x] >= score {
				return false
			}
		}
	}
	return true
}
