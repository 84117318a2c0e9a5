package features

import (
	"image"
	"math/rand"

	"github.com/anthonynsimon/bild/blur"
	"github.com/ironsheep/feature-match-mcp/internal/imaging"
	"github.com/pkg/errors"
)

// BRIEFConfig holds the BRIEF descriptor parameters.
type BRIEFConfig struct {
	// Bytes is the descriptor length; 16, 32 or 64.
	Bytes int `json:"bytes"`
	// HalfWindow is the radius of the square sampling window.
	HalfWindow int `json:"half_window"`
	// BlurRadius is the Gaussian smoothing applied before sampling.
	BlurRadius float64 `json:"blur_radius"`
	// Seed fixes the sampling pattern; equal seeds give comparable
	// descriptors.
	Seed int64 `json:"seed"`
}

// DefaultBRIEFConfig returns a 256-bit BRIEF over a 31x31 window.
func DefaultBRIEFConfig() BRIEFConfig {
	return BRIEFConfig{Bytes: 32, HalfWindow: 15, BlurRadius: 2, Seed: 1}
}

// Validate checks parameter ranges.
func (c BRIEFConfig) Validate() error {
	switch c.Bytes {
	case 16, 32, 64:
	default:
		return errors.Wrapf(ErrInvalidParameter, "brief bytes %d", c.Bytes)
	}
	if c.HalfWindow < 1 {
		return errors.Wrapf(ErrInvalidParameter, "brief half window %d", c.HalfWindow)
	}
	if c.BlurRadius < 0 {
		return errors.Wrapf(ErrInvalidParameter, "brief blur radius %g", c.BlurRadius)
	}
	return nil
}

type briefPair struct {
	a, b image.Point
}

type briefExtractor struct {
	cfg   BRIEFConfig
	pairs []briefPair
}

func newBRIEFExtractor(cfg BRIEFConfig) (*briefExtractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	span := 2*cfg.HalfWindow + 1
	pick := func() int { return rng.Intn(span) - cfg.HalfWindow }

	pairs := make([]briefPair, cfg.Bytes*8)
	for i := range pairs {
		pairs[i] = briefPair{
			a: image.Pt(pick(), pick()),
			b: image.Pt(pick(), pick()),
		}
	}
	return &briefExtractor{cfg: cfg, pairs: pairs}, nil
}

func (e *briefExtractor) Kind() DescriptorKind { return DescriptorBRIEF }

// Compute samples intensity comparisons around each keypoint of the
// smoothed image. Keypoints whose window leaves the image are dropped; the
// returned keypoints line up with the descriptor rows.
func (e *briefExtractor) Compute(img *image.Gray, kps []Keypoint) ([]Keypoint, *Descriptors, error) {
	if img == nil || img.Bounds().Empty() {
		d, _ := NewBinaryDescriptors(nil)
		return []Keypoint{}, d, nil
	}

	smooth := img
	if e.cfg.BlurRadius > 0 {
		smooth = imaging.GrayFromRGBA(blur.Gaussian(img, e.cfg.BlurRadius))
	}
	b := smooth.Bounds()
	w, h := b.Dx(), b.Dy()
	hw := e.cfg.HalfWindow
	at := func(x, y int) uint8 {
		return smooth.Pix[y*smooth.Stride+x]
	}

	kept := make([]Keypoint, 0, len(kps))
	rows := make([][]byte, 0, len(kps))
	for _, kp := range kps {
		p := kp.Pt()
		if p.X-hw < 0 || p.Y-hw < 0 || p.X+hw >= w || p.Y+hw >= h {
			continue
		}
		desc := make([]byte, e.cfg.Bytes)
		for i, pr := range e.pairs {
			if at(p.X+pr.a.X, p.Y+pr.a.Y) < at(p.X+pr.b.X, p.Y+pr.b.Y) {
				desc[i>>3] |= 1 << uint(i&7)
			}
		}
		kept = append(kept, kp)
		rows = append(rows, desc)
	}

	d, err := NewBinaryDescriptors(rows)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		d.cols = e.cfg.Bytes
	}
	return kept, d, nil
}
