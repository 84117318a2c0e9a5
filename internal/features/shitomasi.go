package features

import (
	"image"
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ShiTomasiConfig holds the good-features-to-track parameters.
type ShiTomasiConfig struct {
	BlockSize    int     `json:"block_size"`
	MaxOverlap   float64 `json:"max_overlap"`
	QualityLevel float64 `json:"quality_level"`
	// UseHarris switches the response from the minimum eigenvalue to the
	// Harris measure with constant K.
	UseHarris bool    `json:"use_harris"`
	K         float64 `json:"k"`
	// MaxCorners caps the result; 0 derives rows*cols/minDistance.
	MaxCorners int `json:"max_corners"`
}

// DefaultShiTomasiConfig returns block size 4 with quality level 0.01.
func DefaultShiTomasiConfig() ShiTomasiConfig {
	return ShiTomasiConfig{
		BlockSize:    4,
		MaxOverlap:   0,
		QualityLevel: 0.01,
		K:            0.04,
	}
}

// Validate checks parameter ranges.
func (c ShiTomasiConfig) Validate() error {
	if c.BlockSize < 1 {
		return errors.Wrapf(ErrInvalidParameter, "shi-tomasi block size %d", c.BlockSize)
	}
	if c.MaxOverlap < 0 || c.MaxOverlap > 1 {
		return errors.Wrapf(ErrInvalidParameter, "shi-tomasi max overlap %g", c.MaxOverlap)
	}
	if c.QualityLevel <= 0 || c.QualityLevel >= 1 {
		return errors.Wrapf(ErrInvalidParameter, "shi-tomasi quality level %g", c.QualityLevel)
	}
	if c.MaxCorners < 0 {
		return errors.Wrapf(ErrInvalidParameter, "shi-tomasi max corners %d", c.MaxCorners)
	}
	return nil
}

// MinDistance is the minimum spacing between returned corners.
func (c ShiTomasiConfig) MinDistance() float64 {
	return (1 - c.MaxOverlap) * float64(c.BlockSize)
}

// minEigenResponse returns the smaller eigenvalue of the gradient
// covariance matrix at every pixel.
func minEigenResponse(src *mat.Dense, blockSize int) (*mat.Dense, error) {
	a, b, c, err := structureTensor(src, blockSize, 3)
	if err != nil {
		return nil, err
	}
	rows, cols := src.Dims()
	resp := mat.NewDense(rows, cols, nil)
	for y := 0; y < rows; y++ {
		ra, rb, rc := a.RawRowView(y), b.RawRowView(y), c.RawRowView(y)
		out := resp.RawRowView(y)
		for x := 0; x < cols; x++ {
			ha, hc := ra[x]*0.5, rc[x]*0.5
			out[x] = (ha + hc) - math.Sqrt((ha-hc)*(ha-hc)+rb[x]*rb[x])
		}
	}
	return resp, nil
}

type corner struct {
	x, y  int
	score float64
}

// ExtractShiTomasi finds the strongest corners of img: responses below
// QualityLevel times the maximum are dropped, survivors must be 3x3 local
// maxima, and corners are then accepted strongest first while they keep
// MinDistance from every corner already accepted.
func ExtractShiTomasi(img *image.Gray, cfg ShiTomasiConfig) ([]Keypoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src := grayToDense(img)
	if src == nil {
		return []Keypoint{}, nil
	}

	var (
		resp *mat.Dense
		err  error
	)
	if cfg.UseHarris {
		resp, err = harrisFromDense(src, cfg.BlockSize, 3, cfg.K)
	} else {
		resp, err = minEigenResponse(src, cfg.BlockSize)
	}
	if err != nil {
		return nil, err
	}

	rows, cols := resp.Dims()
	maxVal := mat.Max(resp)
	if maxVal <= 0 {
		return []Keypoint{}, nil
	}
	thresh := maxVal * cfg.QualityLevel
	at := func(x, y int) float64 {
		v := resp.At(y, x)
		if v <= thresh {
			return 0
		}
		return v
	}

	var corners []corner
	for y := 1; y < rows-1; y++ {
		for x := 1; x < cols-1; x++ {
			v := at(x, y)
			if v == 0 {
				continue
			}
			isMax := true
			for dy := -1; dy <= 1 && isMax; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if at(x+dx, y+dy) > v {
						isMax = false
						break
					}
				}
			}
			if isMax {
				corners = append(corners, corner{x: x, y: y, score: v})
			}
		}
	}
	sort.SliceStable(corners, func(i, j int) bool {
		return corners[i].score > corners[j].score
	})

	minDist := cfg.MinDistance()
	maxCorners := cfg.MaxCorners
	if maxCorners == 0 {
		maxCorners = int(float64(rows*cols) / math.Max(1, minDist))
	}

	accepted := spaceCorners(corners, minDist, maxCorners)
	kps := make([]Keypoint, len(accepted))
	for i, c := range accepted {
		kps[i] = Keypoint{
			X:        float64(c.x),
			Y:        float64(c.y),
			Size:     float64(cfg.BlockSize),
			Angle:    -1,
			Response: c.score,
		}
	}
	return kps, nil
}

// spaceCorners accepts corners in order while every accepted pair stays at
// least minDist apart, using a uniform grid to bound the comparisons.
func spaceCorners(corners []corner, minDist float64, maxCorners int) []corner {
	if minDist < 1 {
		if len(corners) > maxCorners {
			return corners[:maxCorners]
		}
		return corners
	}
	cell := int(math.Ceil(minDist))
	grid := make(map[image.Point][]corner)
	minDist2 := minDist * minDist

	out := make([]corner, 0, len(corners))
	for _, c := range corners {
		gx, gy := c.x/cell, c.y/cell
		good := true
		for ny := gy - 1; ny <= gy+1 && good; ny++ {
			for nx := gx - 1; nx <= gx+1 && good; nx++ {
				for _, o := range grid[image.Pt(nx, ny)] {
					dx, dy := float64(c.x-o.x), float64(c.y-o.y)
					if dx*dx+dy*dy < minDist2 {
						good = false
						break
					}
				}
			}
		}
		if !good {
			continue
		}
		grid[image.Pt(gx, gy)] = append(grid[image.Pt(gx, gy)], c)
		out = append(out, c)
		if len(out) == maxCorners {
			break
		}
	}
	return out
}
