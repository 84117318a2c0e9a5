package pipeline

import (
	"image"
	"time"

	"github.com/ironsheep/feature-match-mcp/internal/features"
	"github.com/ironsheep/feature-match-mcp/internal/imaging"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Pipeline runs detection, description and matching with one resolved
// configuration. It holds no per-image state and may be reused.
type Pipeline struct {
	cfg       Config
	resolved  Resolved
	detector  features.Detector
	extractor features.Extractor
	matcher   *features.Matcher
	cache     *imaging.ImageCache
	logger    zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for stage timings and warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithCache shares an image cache with the caller.
func WithCache(c *imaging.ImageCache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// New resolves cfg and builds the detector, extractor and matcher.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{cfg: cfg, logger: zerolog.Nop()}
	for _, o := range opts {
		o(p)
	}
	if p.cache == nil {
		p.cache = imaging.NewImageCache()
	}

	r, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	p.resolved = r

	if p.detector, err = features.NewDetector(r.Detector, cfg.DetectorOptions()); err != nil {
		return nil, err
	}
	if p.extractor, err = features.NewExtractor(r.Descriptor, cfg.BRIEF); err != nil {
		return nil, err
	}
	if p.matcher, err = features.NewMatcher(r.Match, features.WithLogger(p.logger)); err != nil {
		return nil, err
	}
	return p, nil
}

// Config returns the configuration the pipeline was built from.
func (p *Pipeline) Config() Config { return p.cfg }

// Frame is one image after detection and description. Scale is the
// factor applied before detection; keypoint coordinates are in the scaled
// frame.
type Frame struct {
	Path   string  `json:"path,omitempty"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`

	Keypoints   []features.Keypoint   `json:"keypoints"`
	Descriptors *features.Descriptors `json:"-"`
}

// Detect finds keypoints in img, then applies the focus region and the
// keypoint limit.
func (p *Pipeline) Detect(img *image.Gray) ([]features.Keypoint, error) {
	start := time.Now()
	kps, err := p.detector.Detect(img)
	if err != nil {
		return nil, errors.Wrapf(err, "detect %s", p.resolved.Detector)
	}
	found := len(kps)

	if !p.cfg.Focus.IsZero() && img != nil {
		focus := p.cfg.Focus.Scaled(p.cfg.Image.Scale)
		if err := focus.Validate(img.Bounds()); err != nil {
			return nil, errors.Wrapf(features.ErrInvalidParameter, "focus: %v", err)
		}
		kps = features.FilterInside(kps, focus.Rect())
	}
	kps = features.RetainBest(kps, p.cfg.MaxKeypoints)

	p.logger.Debug().
		Str("detector", p.resolved.Detector.String()).
		Int("found", found).
		Int("kept", len(kps)).
		Dur("elapsed", time.Since(start)).
		Msg("keypoints detected")
	return kps, nil
}

// Describe computes descriptors for kps. Keypoints without a descriptor
// are dropped.
func (p *Pipeline) Describe(img *image.Gray, kps []features.Keypoint) ([]features.Keypoint, *features.Descriptors, error) {
	start := time.Now()
	kept, desc, err := p.extractor.Compute(img, kps)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "describe %s", p.resolved.Descriptor)
	}
	p.logger.Debug().
		Str("descriptor", p.resolved.Descriptor.String()).
		Int("keypoints", len(kept)).
		Int("dropped", len(kps)-len(kept)).
		Dur("elapsed", time.Since(start)).
		Msg("descriptors computed")
	return kept, desc, nil
}

// FrameFromGray detects and describes an in-memory frame.
func (p *Pipeline) FrameFromGray(path string, img *image.Gray) (*Frame, error) {
	kps, err := p.Detect(img)
	if err != nil {
		return nil, err
	}
	kps, desc, err := p.Describe(img, kps)
	if err != nil {
		return nil, err
	}
	f := &Frame{Path: path, Scale: p.cfg.Image.Scale, Keypoints: kps, Descriptors: desc}
	if img != nil {
		f.Width, f.Height = img.Bounds().Dx(), img.Bounds().Dy()
	}
	return f, nil
}

// LoadFrame reads path through the cache and returns its frame.
func (p *Pipeline) LoadFrame(path string) (*Frame, error) {
	img, err := p.cache.LoadGray(path, p.cfg.Image)
	if err != nil {
		return nil, err
	}
	return p.FrameFromGray(path, img)
}

// DetectFile returns the keypoints of path without describing them.
func (p *Pipeline) DetectFile(path string) (*Frame, error) {
	img, err := p.cache.LoadGray(path, p.cfg.Image)
	if err != nil {
		return nil, err
	}
	kps, err := p.Detect(img)
	if err != nil {
		return nil, err
	}
	return &Frame{
		Path:      path,
		Width:     img.Bounds().Dx(),
		Height:    img.Bounds().Dy(),
		Scale:     p.cfg.Image.Scale,
		Keypoints: kps,
	}, nil
}

// Result is the outcome of matching a source frame against a reference.
type Result struct {
	Detector   string           `json:"detector"`
	Descriptor string           `json:"descriptor"`
	Matcher    string           `json:"matcher"`
	Selector   string           `json:"selector"`
	Source     *Frame           `json:"source"`
	Reference  *Frame           `json:"reference"`
	Matches    []features.Match `json:"matches"`
}

// MatchFrames matches the descriptors of two frames. Match.QueryIdx
// indexes src.Keypoints and Match.TrainIdx indexes ref.Keypoints.
func (p *Pipeline) MatchFrames(src, ref *Frame) (*Result, error) {
	start := time.Now()
	matches, err := p.matcher.Match(src.Descriptors, ref.Descriptors)
	if err != nil {
		return nil, errors.Wrapf(err, "match %s/%s", p.resolved.Match.Matcher, p.resolved.Match.Selector)
	}
	p.logger.Debug().
		Str("source", src.Path).
		Str("reference", ref.Path).
		Int("matches", len(matches)).
		Dur("elapsed", time.Since(start)).
		Msg("frames matched")

	return &Result{
		Detector:   p.resolved.Detector.String(),
		Descriptor: p.resolved.Descriptor.String(),
		Matcher:    p.resolved.Match.Matcher.String(),
		Selector:   p.resolved.Match.Selector.String(),
		Source:     src,
		Reference:  ref,
		Matches:    matches,
	}, nil
}

// MatchFiles loads, describes and matches two image files.
func (p *Pipeline) MatchFiles(sourcePath, referencePath string) (*Result, error) {
	src, err := p.LoadFrame(sourcePath)
	if err != nil {
		return nil, errors.Wrapf(err, "source %s", sourcePath)
	}
	ref, err := p.LoadFrame(referencePath)
	if err != nil {
		return nil, errors.Wrapf(err, "reference %s", referencePath)
	}
	return p.MatchFrames(src, ref)
}
