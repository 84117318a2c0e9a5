//go:build !opencv

package features

import "github.com/pkg/errors"

const openCVAvailable = false

func newOpenCVDetector(kind DetectorKind) (Detector, error) {
	return nil, errors.Wrapf(ErrBackendUnavailable, "detector %s needs a build with -tags opencv", kind)
}

func newOpenCVExtractor(kind DescriptorKind) (Extractor, error) {
	return nil, errors.Wrapf(ErrBackendUnavailable, "descriptor %s needs a build with -tags opencv", kind)
}
