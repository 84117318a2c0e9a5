package features

import (
	"image"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SuppressionPolicy decides which incumbent keypoint a stronger, overlapping
// candidate displaces during non-maximum suppression.
type SuppressionPolicy int

const (
	// PolicyBestMatch accepts a candidate only if it is stronger than every
	// incumbent it overlaps; it takes the slot of the first of them and the
	// others are removed. The result never holds an overlapping pair.
	PolicyBestMatch SuppressionPolicy = iota

	// PolicyFirstMatch replaces the first overlapping incumbent (in
	// insertion order) that is weaker than the candidate and stops looking.
	// This matches the classic OpenCV-based Harris loop exactly, including the
	// case where the new keypoint still overlaps a stronger incumbent.
	PolicyFirstMatch
)

func (p SuppressionPolicy) String() string {
	if p == PolicyFirstMatch {
		return "first"
	}
	return "best"
}

// ParseSuppressionPolicy accepts "best" (or "") and "first".
func ParseSuppressionPolicy(s string) (SuppressionPolicy, error) {
	switch normalizeName(s) {
	case "", "BEST", "BESTMATCH":
		return PolicyBestMatch, nil
	case "FIRST", "FIRSTMATCH":
		return PolicyFirstMatch, nil
	}
	return 0, errors.Wrapf(ErrInvalidParameter, "suppression policy %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p SuppressionPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *SuppressionPolicy) UnmarshalText(text []byte) error {
	v, err := ParseSuppressionPolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// HarrisConfig holds the Harris detector parameters.
type HarrisConfig struct {
	// BlockSize is the neighbourhood summed into the gradient covariance.
	BlockSize int `json:"block_size"`
	// ApertureSize is the Sobel aperture: 3, 5 or 7.
	ApertureSize int `json:"aperture_size"`
	// K is the Harris sensitivity constant, typically 0.04 to 0.06.
	K float64 `json:"k"`
	// MinResponse is the threshold on the response normalized to [0, 255].
	MinResponse float64 `json:"min_response"`
	// MaxOverlap is the largest permitted overlap between two keypoints.
	MaxOverlap float64 `json:"max_overlap"`
	// Policy is the suppression policy: "best" or "first".
	Policy SuppressionPolicy `json:"policy"`
}

// DefaultHarrisConfig returns block size 2, aperture 3, k 0.04 and a
// response threshold of 120.
func DefaultHarrisConfig() HarrisConfig {
	return HarrisConfig{
		BlockSize:    2,
		ApertureSize: 3,
		K:            0.04,
		MinResponse:  120,
		MaxOverlap:   0,
		Policy:       PolicyBestMatch,
	}
}

// Validate checks parameter ranges.
func (c HarrisConfig) Validate() error {
	if c.BlockSize < 1 {
		return errors.Wrapf(ErrInvalidParameter, "harris block size %d", c.BlockSize)
	}
	if c.ApertureSize != 3 && c.ApertureSize != 5 && c.ApertureSize != 7 {
		return errors.Wrapf(ErrInvalidParameter, "harris aperture size %d", c.ApertureSize)
	}
	if c.MaxOverlap < 0 || c.MaxOverlap > 1 {
		return errors.Wrapf(ErrInvalidParameter, "harris max overlap %g", c.MaxOverlap)
	}
	return nil
}

// HarrisResponse computes the Harris corner response
//
//	R = det(M) - k * trace(M)^2
//
// for every pixel, where M is the gradient covariance summed over a
// blockSize x blockSize window. The result has one row per image row. An
// empty image yields a nil map.
func HarrisResponse(img *image.Gray, blockSize, apertureSize int, k float64) (*mat.Dense, error) {
	src := grayToDense(img)
	if src == nil {
		return nil, nil
	}
	return harrisFromDense(src, blockSize, apertureSize, k)
}

func harrisFromDense(src *mat.Dense, blockSize, aperture int, k float64) (*mat.Dense, error) {
	a, b, c, err := structureTensor(src, blockSize, aperture)
	if err != nil {
		return nil, err
	}
	rows, cols := src.Dims()
	resp := mat.NewDense(rows, cols, nil)
	for y := 0; y < rows; y++ {
		ra, rb, rc := a.RawRowView(y), b.RawRowView(y), c.RawRowView(y)
		out := resp.RawRowView(y)
		for x := 0; x < cols; x++ {
			tr := ra[x] + rc[x]
			out[x] = ra[x]*rc[x] - rb[x]*rb[x] - k*tr*tr
		}
	}
	return resp, nil
}

// NormalizeMinMax linearly maps src so that its minimum becomes lo and its
// maximum hi. A constant map becomes all lo.
func NormalizeMinMax(src *mat.Dense, lo, hi float64) *mat.Dense {
	rows, cols := src.Dims()
	dst := mat.NewDense(rows, cols, nil)

	data := make([]float64, 0, rows*cols)
	for y := 0; y < rows; y++ {
		data = append(data, src.RawRowView(y)...)
	}
	smin, smax := floats.Min(data), floats.Max(data)

	scale := 0.0
	if smax-smin > math.SmallestNonzeroFloat64 {
		scale = (hi - lo) / (smax - smin)
	}
	shift := lo - smin*scale
	for y := 0; y < rows; y++ {
		in := src.RawRowView(y)
		out := dst.RawRowView(y)
		for x, v := range in {
			out[x] = v*scale + shift
		}
	}
	return dst
}

// KeypointsFromResponse scans a normalized response map in row-major order
// and feeds every pixel whose truncated value exceeds cfg.MinResponse
// through overlap suppression. Keypoints have Size 2*ApertureSize and the
// truncated response.
func KeypointsFromResponse(norm *mat.Dense, cfg HarrisConfig) []Keypoint {
	if norm == nil {
		return []Keypoint{}
	}
	s := newSuppressor(cfg.MaxOverlap, cfg.Policy)
	rows, cols := norm.Dims()
	size := float64(2 * cfg.ApertureSize)
	for y := 0; y < rows; y++ {
		row := norm.RawRowView(y)
		for x := 0; x < cols; x++ {
			response := math.Trunc(row[x])
			if response <= cfg.MinResponse {
				continue
			}
			s.offer(Keypoint{
				X:        float64(x),
				Y:        float64(y),
				Size:     size,
				Angle:    -1,
				Response: response,
			})
		}
	}
	return s.result()
}

// ExtractHarris detects Harris corners in img and applies overlap-based
// non-maximum suppression. Empty or uniform images give an empty result.
func ExtractHarris(img *image.Gray, cfg HarrisConfig) ([]Keypoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	resp, err := HarrisResponse(img, cfg.BlockSize, cfg.ApertureSize, cfg.K)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return []Keypoint{}, nil
	}
	return KeypointsFromResponse(NormalizeMinMax(resp, 0, 255), cfg), nil
}

// SuppressOverlaps runs overlap suppression over candidates in the given
// order and returns the surviving keypoints.
func SuppressOverlaps(candidates []Keypoint, maxOverlap float64, policy SuppressionPolicy) []Keypoint {
	s := newSuppressor(maxOverlap, policy)
	for _, c := range candidates {
		s.offer(c)
	}
	return s.result()
}

type suppressor struct {
	maxOverlap float64
	policy     SuppressionPolicy
	kept       []Keypoint
}

func newSuppressor(maxOverlap float64, policy SuppressionPolicy) *suppressor {
	return &suppressor{maxOverlap: maxOverlap, policy: policy, kept: []Keypoint{}}
}

func (s *suppressor) offer(c Keypoint) {
	if s.policy == PolicyFirstMatch {
		s.offerFirst(c)
		return
	}
	s.offerBest(c)
}

func (s *suppressor) offerFirst(c Keypoint) {
	overlapped := false
	for i := range s.kept {
		if Overlap(c, s.kept[i]) <= s.maxOverlap {
			continue
		}
		overlapped = true
		if c.Response > s.kept[i].Response {
			s.kept[i] = c
			break
		}
	}
	if !overlapped {
		s.kept = append(s.kept, c)
	}
}

func (s *suppressor) offerBest(c Keypoint) {
	var rivals []int
	for i := range s.kept {
		if Overlap(c, s.kept[i]) <= s.maxOverlap {
			continue
		}
		if c.Response <= s.kept[i].Response {
			return
		}
		rivals = append(rivals, i)
	}
	if len(rivals) == 0 {
		s.kept = append(s.kept, c)
		return
	}

	s.kept[rivals[0]] = c
	if len(rivals) == 1 {
		return
	}
	drop := make(map[int]struct{}, len(rivals)-1)
	for _, i := range rivals[1:] {
		drop[i] = struct{}{}
	}
	kept := s.kept[:0]
	for i, kp := range s.kept {
		if _, ok := drop[i]; !ok {
			kept = append(kept, kp)
		}
	}
	s.kept = kept
}

func (s *suppressor) result() []Keypoint {
	return s.kept
}
