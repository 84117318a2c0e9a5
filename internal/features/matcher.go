package features

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// DefaultRatio is the nearest-neighbour distance ratio.
	DefaultRatio = 0.8
	// DefaultChecks bounds the leaves visited by the approximate search.
	DefaultChecks = 32
)

// MatchOptions selects and parameterises a matcher.
type MatchOptions struct {
	Matcher  MatcherKind
	Selector SelectorKind
	// Ratio is the ratio-test threshold; 0 means DefaultRatio.
	Ratio float64
	// CrossCheck keeps only mutual nearest neighbours. Brute force with
	// nearest-neighbour selection only.
	CrossCheck bool
	// Checks bounds approximate search; 0 means DefaultChecks and a
	// negative value searches exhaustively.
	Checks int
}

// Matcher matches source descriptors against reference descriptors.
type Matcher struct {
	opts   MatchOptions
	logger zerolog.Logger
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithLogger sets the logger used for conversion warnings and debug output.
func WithLogger(l zerolog.Logger) MatcherOption {
	return func(m *Matcher) { m.logger = l }
}

// NewMatcher validates opts and returns a ready matcher.
func NewMatcher(opts MatchOptions, options ...MatcherOption) (*Matcher, error) {
	if opts.Ratio == 0 {
		opts.Ratio = DefaultRatio
	}
	if opts.Ratio < 0 || opts.Ratio > 1 {
		return nil, errors.Wrapf(ErrInvalidParameter, "ratio %g", opts.Ratio)
	}
	if opts.Checks == 0 {
		opts.Checks = DefaultChecks
	}
	switch opts.Matcher {
	case MatcherBruteForce, MatcherApproximateNN:
	default:
		return nil, errors.Wrapf(ErrUnsupportedAlgorithm, "matcher %d", int(opts.Matcher))
	}
	switch opts.Selector {
	case SelectorNearestNeighbor, SelectorRatioTestKNN:
	default:
		return nil, errors.Wrapf(ErrUnsupportedAlgorithm, "selector %d", int(opts.Selector))
	}
	if opts.CrossCheck && (opts.Matcher != MatcherBruteForce || opts.Selector != SelectorNearestNeighbor) {
		return nil, errors.Wrap(ErrInvalidParameter, "cross check needs brute force with nearest-neighbour selection")
	}

	m := &Matcher{opts: opts, logger: zerolog.Nop()}
	for _, o := range options {
		o(m)
	}
	return m, nil
}

// Options returns the resolved options.
func (m *Matcher) Options() MatchOptions { return m.opts }

// Match returns the accepted correspondences ordered by source index.
func (m *Matcher) Match(src, ref *Descriptors) ([]Match, error) {
	if src == nil || ref == nil {
		return nil, errors.Wrap(ErrDescriptorMismatch, "nil descriptors")
	}
	if src.Rows() == 0 || ref.Rows() == 0 {
		return []Match{}, nil
	}
	if src.Cols() != ref.Cols() {
		return nil, errors.Wrapf(ErrDescriptorMismatch, "source has %d columns, reference %d", src.Cols(), ref.Cols())
	}

	idx, err := m.buildIndex(src, ref)
	if err != nil {
		return nil, err
	}

	var matches []Match
	switch m.opts.Selector {
	case SelectorNearestNeighbor:
		matches = selectNearest(idx, src.Rows())
		if m.opts.CrossCheck {
			back, err := m.buildIndex(ref, src)
			if err != nil {
				return nil, err
			}
			matches = crossCheck(matches, back)
		}
	case SelectorRatioTestKNN:
		matches = selectRatio(idx, src.Rows(), m.opts.Ratio)
	}

	m.logger.Debug().
		Str("matcher", m.opts.Matcher.String()).
		Str("selector", m.opts.Selector.String()).
		Int("source", src.Rows()).
		Int("reference", ref.Rows()).
		Int("matches", len(matches)).
		Msg("descriptors matched")
	return matches, nil
}

// neighborIndex answers k-nearest-neighbour queries for source row q
// against the reference set. Results are sorted by distance, then index.
type neighborIndex interface {
	knn(q, k int) []Match
}

func (m *Matcher) buildIndex(src, ref *Descriptors) (neighborIndex, error) {
	switch m.opts.Matcher {
	case MatcherBruteForce:
		if src.Format() != ref.Format() {
			return nil, errors.Wrapf(ErrDescriptorMismatch, "source is %s, reference is %s", src.Format(), ref.Format())
		}
		return &bruteForce{src: src, ref: ref}, nil
	case MatcherApproximateNN:
		if src.Format() == FormatBinary || ref.Format() == FormatBinary {
			m.logger.Warn().
				Int("source_rows", src.Rows()).
				Int("reference_rows", ref.Rows()).
				Int("cols", src.Cols()).
				Msg("converting binary descriptors to float for approximate search")
			src, ref = src.ToFloat(), ref.ToFloat()
		}
		return newKDIndex(src, ref, m.opts.Checks), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedAlgorithm, "matcher %s", m.opts.Matcher)
}

func selectNearest(idx neighborIndex, rows int) []Match {
	out := make([]Match, 0, rows)
	for q := 0; q < rows; q++ {
		if nn := idx.knn(q, 1); len(nn) > 0 {
			out = append(out, nn[0])
		}
	}
	return out
}

// selectRatio keeps the best neighbour only when it is clearly better than
// the second best: d(best) < ratio * d(second).
func selectRatio(idx neighborIndex, rows int, ratio float64) []Match {
	out := make([]Match, 0, rows)
	for q := 0; q < rows; q++ {
		nn := idx.knn(q, 2)
		if len(nn) < 2 {
			continue
		}
		if nn[0].Distance < ratio*nn[1].Distance {
			out = append(out, nn[0])
		}
	}
	return out
}

// crossCheck keeps forward matches whose reference descriptor picks the
// same source descriptor as its own nearest neighbour.
func crossCheck(forward []Match, back neighborIndex) []Match {
	out := forward[:0]
	for _, f := range forward {
		nn := back.knn(f.TrainIdx, 1)
		if len(nn) > 0 && nn[0].TrainIdx == f.QueryIdx {
			out = append(out, f)
		}
	}
	return out
}

// insertNeighbor adds c to best, keeping at most k entries sorted by
// distance with lower reference index first on ties.
func insertNeighbor(best []Match, c Match, k int) []Match {
	i := sort.Search(len(best), func(i int) bool {
		if best[i].Distance != c.Distance {
			return best[i].Distance > c.Distance
		}
		return best[i].TrainIdx > c.TrainIdx
	})
	if i >= k {
		return best
	}
	if len(best) < k {
		best = append(best, Match{})
	}
	copy(best[i+1:], best[i:])
	best[i] = c
	return best
}
