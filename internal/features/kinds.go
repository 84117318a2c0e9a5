package features

import (
	"strings"

	"github.com/pkg/errors"
)

// DetectorKind selects a keypoint detection algorithm.
type DetectorKind int

const (
	DetectorShiTomasi DetectorKind = iota
	DetectorHarris
	DetectorFAST
	DetectorBRISK
	DetectorORB
	DetectorAKAZE
	DetectorSIFT
)

var detectorNames = map[DetectorKind]string{
	DetectorShiTomasi: "SHITOMASI",
	DetectorHarris:    "HARRIS",
	DetectorFAST:      "FAST",
	DetectorBRISK:     "BRISK",
	DetectorORB:       "ORB",
	DetectorAKAZE:     "AKAZE",
	DetectorSIFT:      "SIFT",
}

func (k DetectorKind) String() string {
	if s, ok := detectorNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseDetectorKind resolves a detector name. Matching is case-insensitive
// and ignores '-' and '_' so "Shi-Tomasi" and "SHITOMASI" are equivalent.
func ParseDetectorKind(s string) (DetectorKind, error) {
	key := normalizeName(s)
	for k, name := range detectorNames {
		if name == key {
			return k, nil
		}
	}
	return 0, errors.Wrapf(ErrUnsupportedAlgorithm, "detector %q", s)
}

// DetectorKinds lists every detector in declaration order.
func DetectorKinds() []DetectorKind {
	return []DetectorKind{DetectorShiTomasi, DetectorHarris, DetectorFAST,
		DetectorBRISK, DetectorORB, DetectorAKAZE, DetectorSIFT}
}

// DescriptorKind selects a descriptor extraction algorithm.
type DescriptorKind int

const (
	DescriptorBRIEF DescriptorKind = iota
	DescriptorBRISK
	DescriptorORB
	DescriptorAKAZE
	DescriptorFREAK
	DescriptorSIFT
)

var descriptorNames = map[DescriptorKind]string{
	DescriptorBRIEF: "BRIEF",
	DescriptorBRISK: "BRISK",
	DescriptorORB:   "ORB",
	DescriptorAKAZE: "AKAZE",
	DescriptorFREAK: "FREAK",
	DescriptorSIFT:  "SIFT",
}

func (k DescriptorKind) String() string {
	if s, ok := descriptorNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// Format reports whether the descriptor produces binary or float vectors.
func (k DescriptorKind) Format() Format {
	if k == DescriptorSIFT {
		return FormatFloat
	}
	return FormatBinary
}

// ParseDescriptorKind resolves a descriptor name.
func ParseDescriptorKind(s string) (DescriptorKind, error) {
	key := normalizeName(s)
	for k, name := range descriptorNames {
		if name == key {
			return k, nil
		}
	}
	return 0, errors.Wrapf(ErrUnsupportedAlgorithm, "descriptor %q", s)
}

// DescriptorKinds lists every descriptor in declaration order.
func DescriptorKinds() []DescriptorKind {
	return []DescriptorKind{DescriptorBRIEF, DescriptorBRISK, DescriptorORB,
		DescriptorAKAZE, DescriptorFREAK, DescriptorSIFT}
}

// MatcherKind selects the nearest-neighbour search strategy.
type MatcherKind int

const (
	MatcherBruteForce MatcherKind = iota
	MatcherApproximateNN
)

func (k MatcherKind) String() string {
	switch k {
	case MatcherBruteForce:
		return "MAT_BF"
	case MatcherApproximateNN:
		return "MAT_FLANN"
	}
	return "UNKNOWN"
}

// ParseMatcherKind accepts "MAT_BF"/"BF"/"BRUTEFORCE" and
// "MAT_FLANN"/"FLANN"/"ANN".
func ParseMatcherKind(s string) (MatcherKind, error) {
	switch normalizeName(s) {
	case "MATBF", "BF", "BRUTEFORCE":
		return MatcherBruteForce, nil
	case "MATFLANN", "FLANN", "ANN", "APPROXIMATENN":
		return MatcherApproximateNN, nil
	}
	return 0, errors.Wrapf(ErrUnsupportedAlgorithm, "matcher %q", s)
}

// SelectorKind selects how candidate neighbours become matches.
type SelectorKind int

const (
	SelectorNearestNeighbor SelectorKind = iota
	SelectorRatioTestKNN
)

func (k SelectorKind) String() string {
	switch k {
	case SelectorNearestNeighbor:
		return "SEL_NN"
	case SelectorRatioTestKNN:
		return "SEL_KNN"
	}
	return "UNKNOWN"
}

// ParseSelectorKind accepts "SEL_NN"/"NN" and "SEL_KNN"/"KNN".
func ParseSelectorKind(s string) (SelectorKind, error) {
	switch normalizeName(s) {
	case "SELNN", "NN", "NEARESTNEIGHBOR":
		return SelectorNearestNeighbor, nil
	case "SELKNN", "KNN", "RATIOTESTKNN":
		return SelectorRatioTestKNN, nil
	}
	return 0, errors.Wrapf(ErrUnsupportedAlgorithm, "selector %q", s)
}

func normalizeName(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}
