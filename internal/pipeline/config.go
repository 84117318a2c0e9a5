package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"strconv"

	"github.com/ironsheep/feature-match-mcp/internal/features"
	"github.com/ironsheep/feature-match-mcp/internal/imaging"
	"github.com/pkg/errors"
)

// Environment variables read by ApplyEnv.
const (
	EnvDetector   = "FEATURE_MCP_DETECTOR"
	EnvDescriptor = "FEATURE_MCP_DESCRIPTOR"
	EnvMatcher    = "FEATURE_MCP_MATCHER"
	EnvSelector   = "FEATURE_MCP_SELECTOR"
	EnvRatio      = "FEATURE_MCP_RATIO"
)

// Config is the full pipeline configuration. Algorithm names are kept as
// strings so the file stays readable; Resolve turns them into kinds.
type Config struct {
	Detector   string  `json:"detector"`
	Descriptor string  `json:"descriptor"`
	Matcher    string  `json:"matcher"`
	Selector   string  `json:"selector"`
	Ratio      float64 `json:"ratio"`
	CrossCheck bool    `json:"cross_check"`
	Checks     int     `json:"checks"`

	Harris    features.HarrisConfig    `json:"harris"`
	ShiTomasi features.ShiTomasiConfig `json:"shi_tomasi"`
	FAST      features.FASTConfig      `json:"fast"`
	BRIEF     features.BRIEFConfig     `json:"brief"`

	Image imaging.Preprocess `json:"image"`

	// Focus limits keypoints to a region given in original image pixels.
	// The zero region keeps the whole frame.
	Focus imaging.Region `json:"focus"`

	// MaxKeypoints keeps only the strongest keypoints when positive.
	MaxKeypoints int `json:"max_keypoints"`
}

// DefaultConfig returns Shi-Tomasi corners with BRIEF descriptors and
// brute-force nearest-neighbour matching.
func DefaultConfig() Config {
	return Config{
		Detector:   features.DetectorShiTomasi.String(),
		Descriptor: features.DescriptorBRIEF.String(),
		Matcher:    features.MatcherBruteForce.String(),
		Selector:   features.SelectorNearestNeighbor.String(),
		Ratio:      features.DefaultRatio,
		Checks:     features.DefaultChecks,
		Harris:     features.DefaultHarrisConfig(),
		ShiTomasi:  features.DefaultShiTomasiConfig(),
		FAST:       features.DefaultFASTConfig(),
		BRIEF:      features.DefaultBRIEFConfig(),
		Image:      imaging.DefaultPreprocess(),
	}
}

// LoadConfig reads a JSON file over DefaultConfig, so the file only needs
// the fields it changes. Unknown fields are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// ApplyEnv overrides the algorithm selection from the environment. Empty
// variables are ignored.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvDetector); v != "" {
		c.Detector = v
	}
	if v := os.Getenv(EnvDescriptor); v != "" {
		c.Descriptor = v
	}
	if v := os.Getenv(EnvMatcher); v != "" {
		c.Matcher = v
	}
	if v := os.Getenv(EnvSelector); v != "" {
		c.Selector = v
	}
	if v := os.Getenv(EnvRatio); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(features.ErrInvalidParameter, "%s=%q", EnvRatio, v)
		}
		c.Ratio = r
	}
	return nil
}

// Resolved holds the algorithm kinds a Config names.
type Resolved struct {
	Detector   features.DetectorKind
	Descriptor features.DescriptorKind
	Match      features.MatchOptions
}

// Resolve parses every algorithm name once and validates the image
// options. Unknown names yield features.ErrUnsupportedAlgorithm.
func (c Config) Resolve() (Resolved, error) {
	var r Resolved
	var err error
	if r.Detector, err = features.ParseDetectorKind(c.Detector); err != nil {
		return r, err
	}
	if r.Descriptor, err = features.ParseDescriptorKind(c.Descriptor); err != nil {
		return r, err
	}
	if r.Match.Matcher, err = features.ParseMatcherKind(c.Matcher); err != nil {
		return r, err
	}
	if r.Match.Selector, err = features.ParseSelectorKind(c.Selector); err != nil {
		return r, err
	}
	r.Match.Ratio = c.Ratio
	r.Match.CrossCheck = c.CrossCheck
	r.Match.Checks = c.Checks

	if err := c.Image.Validate(); err != nil {
		return r, errors.Wrapf(features.ErrInvalidParameter, "image: %v", err)
	}
	if c.MaxKeypoints < 0 {
		return r, errors.Wrapf(features.ErrInvalidParameter, "max keypoints %d", c.MaxKeypoints)
	}
	return r, nil
}

// DetectorOptions returns the detector parameter block.
func (c Config) DetectorOptions() features.DetectorOptions {
	return features.DetectorOptions{
		Harris:    c.Harris,
		ShiTomasi: c.ShiTomasi,
		FAST:      c.FAST,
	}
}
