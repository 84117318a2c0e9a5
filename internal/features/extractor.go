package features

import (
	"image"

	"github.com/pkg/errors"
)

// Extractor computes one descriptor per keypoint. Keypoints for which no
// descriptor can be computed are removed, so the returned keypoints always
// line up with the descriptor rows.
type Extractor interface {
	Kind() DescriptorKind
	Compute(img *image.Gray, kps []Keypoint) ([]Keypoint, *Descriptors, error)
}

// NewExtractor resolves kind to an extractor.
func NewExtractor(kind DescriptorKind, brief BRIEFConfig) (Extractor, error) {
	switch kind {
	case DescriptorBRIEF:
		return newBRIEFExtractor(brief)
	case DescriptorBRISK, DescriptorORB, DescriptorAKAZE, DescriptorSIFT:
		return newOpenCVExtractor(kind)
	case DescriptorFREAK:
		return nil, errors.Wrap(ErrUnsupportedAlgorithm, "descriptor FREAK has no implementation")
	}
	return nil, errors.Wrapf(ErrUnsupportedAlgorithm, "descriptor %d", int(kind))
}

// DescriptorAvailable reports whether kind can run in this build.
func DescriptorAvailable(kind DescriptorKind) bool {
	switch kind {
	case DescriptorBRIEF:
		return true
	case DescriptorBRISK, DescriptorORB, DescriptorAKAZE, DescriptorSIFT:
		return openCVAvailable
	}
	return false
}
