package pipeline

import (
	"github.com/ironsheep/feature-match-mcp/internal/features"
	"github.com/pkg/errors"
)

// frameBufferSize is how many frames the sequence driver holds at once.
const frameBufferSize = 2

// PairResult is the match between two consecutive frames of a sequence.
// The keypoint counts are of described keypoints, which the match indices
// refer to.
type PairResult struct {
	Source             string           `json:"source"`
	Reference          string           `json:"reference"`
	SourceKeypoints    int              `json:"source_keypoints"`
	ReferenceKeypoints int              `json:"reference_keypoints"`
	Matches            []features.Match `json:"matches"`
}

// SequenceResult collects the pairs of a sequence run.
type SequenceResult struct {
	Detector   string       `json:"detector"`
	Descriptor string       `json:"descriptor"`
	Matcher    string       `json:"matcher"`
	Selector   string       `json:"selector"`
	Frames     int          `json:"frames"`
	Pairs      []PairResult `json:"pairs"`
}

// RunSequence walks paths in order holding at most two frames. Each new
// frame is matched as the reference against the previous frame as the
// source. Frames that leave the buffer are evicted from the cache.
func (p *Pipeline) RunSequence(paths []string) (*SequenceResult, error) {
	out := &SequenceResult{
		Detector:   p.resolved.Detector.String(),
		Descriptor: p.resolved.Descriptor.String(),
		Matcher:    p.resolved.Match.Matcher.String(),
		Selector:   p.resolved.Match.Selector.String(),
		Pairs:      []PairResult{},
	}

	buffer := make([]*Frame, 0, frameBufferSize)
	for i, path := range paths {
		f, err := p.LoadFrame(path)
		if err != nil {
			return nil, errors.Wrapf(err, "frame %d", i)
		}
		if len(buffer) == frameBufferSize {
			p.cache.Evict(buffer[0].Path)
			buffer = append(buffer[:0], buffer[1:]...)
		}
		buffer = append(buffer, f)
		out.Frames++

		if len(buffer) < frameBufferSize {
			continue
		}
		prev, cur := buffer[0], buffer[1]
		res, err := p.MatchFrames(prev, cur)
		if err != nil {
			return nil, errors.Wrapf(err, "frames %d-%d", i-1, i)
		}
		out.Pairs = append(out.Pairs, PairResult{
			Source:             prev.Path,
			Reference:          cur.Path,
			SourceKeypoints:    len(prev.Keypoints),
			ReferenceKeypoints: len(cur.Keypoints),
			Matches:            res.Matches,
		})
	}

	p.logger.Info().
		Int("frames", out.Frames).
		Int("pairs", len(out.Pairs)).
		Msg("sequence complete")
	return out, nil
}
