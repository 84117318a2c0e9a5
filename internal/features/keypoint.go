package features

import (
	"image"
	"math"
	"sort"
)

// Keypoint is a salient image location.
//
// X is the column and Y the row, both in pixel units. Size is the diameter
// of the neighbourhood used for description and Response the detector's
// corner strength.
type Keypoint struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Size     float64 `json:"size"`
	Angle    float64 `json:"angle"`
	Response float64 `json:"response"`
	Octave   int     `json:"octave"`
}

// Pt returns the keypoint position rounded to the nearest pixel.
func (k Keypoint) Pt() image.Point {
	return image.Pt(int(math.Round(k.X)), int(math.Round(k.Y)))
}

// Match links a source descriptor row to a reference descriptor row.
type Match struct {
	QueryIdx int     `json:"query_idx"`
	TrainIdx int     `json:"train_idx"`
	Distance float64 `json:"distance"`
}

// Overlap returns the intersection-over-union of the circular support
// regions of a and b. Each region is a circle of diameter Size centred on
// the keypoint. The result is in [0, 1].
func Overlap(a, b Keypoint) float64 {
	r1 := a.Size / 2
	r2 := b.Size / 2
	if r1 <= 0 || r2 <= 0 {
		return 0
	}
	d := math.Hypot(a.X-b.X, a.Y-b.Y)

	rMin, rMax := math.Min(r1, r2), math.Max(r1, r2)
	if rMin+d <= rMax {
		// one circle lies inside the other
		return (rMin * rMin) / (rMax * rMax)
	}
	if d >= r1+r2 {
		return 0
	}

	alpha := math.Acos(clampUnit((d*d + r1*r1 - r2*r2) / (2 * d * r1)))
	beta := math.Acos(clampUnit((d*d + r2*r2 - r1*r1) / (2 * d * r2)))
	lens := r1*r1*alpha + r2*r2*beta -
		0.5*math.Sqrt(math.Max(0, (-d+r1+r2)*(d+r1-r2)*(d-r1+r2)*(d+r1+r2)))

	union := math.Pi*r1*r1 + math.Pi*r2*r2 - lens
	if union <= 0 {
		return 0
	}
	return lens / union
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// RetainBest keeps the n keypoints with the highest response. Ties keep
// their original relative order. n <= 0 or n >= len(kps) returns kps
// unchanged.
func RetainBest(kps []Keypoint, n int) []Keypoint {
	if n <= 0 || n >= len(kps) {
		return kps
	}
	sorted := make([]Keypoint, len(kps))
	copy(sorted, kps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Response > sorted[j].Response
	})
	return sorted[:n]
}

// FilterInside returns the keypoints whose rounded position lies inside r.
func FilterInside(kps []Keypoint, r image.Rectangle) []Keypoint {
	out := make([]Keypoint, 0, len(kps))
	for _, kp := range kps {
		if kp.Pt().In(r) {
			out = append(out, kp)
		}
	}
	return out
}
