package features

import (
	"github.com/steakknife/hamming"
	"gonum.org/v1/gonum/floats"
)

// bruteForce compares a source row against every reference row: Hamming
// distance for binary descriptors, Euclidean distance for float ones.
type bruteForce struct {
	src, ref *Descriptors
}

func (b *bruteForce) knn(q, k int) []Match {
	best := make([]Match, 0, k)
	for j := 0; j < b.ref.Rows(); j++ {
		c := Match{QueryIdx: q, TrainIdx: j, Distance: b.distance(q, j)}
		best = insertNeighbor(best, c, k)
	}
	return best
}

func (b *bruteForce) distance(q, j int) float64 {
	if b.src.Format() == FormatBinary {
		return float64(hammingDistance(b.src.BinaryRow(q), b.ref.BinaryRow(j)))
	}
	return floats.Distance(b.src.FloatRow(q), b.ref.FloatRow(j), 2)
}

func hammingDistance(a, b []byte) int {
	d := 0
	for i := range a {
		d += hamming.CountBitsInt(int(a[i] ^ b[i]))
	}
	return d
}
