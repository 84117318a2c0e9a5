package features

import (
	"image"

	"github.com/pkg/errors"
)

// Detector finds keypoints in a grayscale image.
type Detector interface {
	Kind() DetectorKind
	Detect(img *image.Gray) ([]Keypoint, error)
}

// DetectorOptions carries the parameters of the pure-Go detectors. Library
// detectors use their backend defaults.
type DetectorOptions struct {
	Harris    HarrisConfig    `json:"harris"`
	ShiTomasi ShiTomasiConfig `json:"shi_tomasi"`
	FAST      FASTConfig      `json:"fast"`
}

// DefaultDetectorOptions returns the default parameters for every
// detector.
func DefaultDetectorOptions() DetectorOptions {
	return DetectorOptions{
		Harris:    DefaultHarrisConfig(),
		ShiTomasi: DefaultShiTomasiConfig(),
		FAST:      DefaultFASTConfig(),
	}
}

// NewDetector resolves kind to a detector. Parameters are validated here so
// that Detect only fails on backend errors.
func NewDetector(kind DetectorKind, opts DetectorOptions) (Detector, error) {
	switch kind {
	case DetectorHarris:
		if err := opts.Harris.Validate(); err != nil {
			return nil, err
		}
		cfg := opts.Harris
		return detectorFunc{kind, func(img *image.Gray) ([]Keypoint, error) {
			return ExtractHarris(img, cfg)
		}}, nil
	case DetectorShiTomasi:
		if err := opts.ShiTomasi.Validate(); err != nil {
			return nil, err
		}
		cfg := opts.ShiTomasi
		return detectorFunc{kind, func(img *image.Gray) ([]Keypoint, error) {
			return ExtractShiTomasi(img, cfg)
		}}, nil
	case DetectorFAST:
		if err := opts.FAST.Validate(); err != nil {
			return nil, err
		}
		cfg := opts.FAST
		return detectorFunc{kind, func(img *image.Gray) ([]Keypoint, error) {
			return ExtractFAST(img, cfg)
		}}, nil
	case DetectorBRISK, DetectorORB, DetectorAKAZE, DetectorSIFT:
		return newOpenCVDetector(kind)
	}
	return nil, errors.Wrapf(ErrUnsupportedAlgorithm, "detector %d", int(kind))
}

// DetectorAvailable reports whether kind can run in this build.
func DetectorAvailable(kind DetectorKind) bool {
	switch kind {
	case DetectorHarris, DetectorShiTomasi, DetectorFAST:
		return true
	case DetectorBRISK, DetectorORB, DetectorAKAZE, DetectorSIFT:
		return openCVAvailable
	}
	return false
}

type detectorFunc struct {
	kind DetectorKind
	fn   func(img *image.Gray) ([]Keypoint, error)
}

func (d detectorFunc) Kind() DetectorKind { return d.kind }

func (d detectorFunc) Detect(img *image.Gray) ([]Keypoint, error) {
	return d.fn(img)
}
