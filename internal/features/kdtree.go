package features

import (
	"container/heap"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const kdLeafSize = 10

// kdNode is either a leaf holding reference row indices or an inner node
// splitting on dim at value split.
type kdNode struct {
	dim         int
	split       float64
	left, right *kdNode
	rows        []int
}

// kdIndex is a kd-tree over float reference descriptors searched
// best-bin-first. With checks > 0 the search stops after that many leaves
// once k candidates are known, so results are approximate.
type kdIndex struct {
	src, ref *Descriptors
	root     *kdNode
	checks   int
}

func newKDIndex(src, ref *Descriptors, checks int) *kdIndex {
	rows := make([]int, ref.Rows())
	for i := range rows {
		rows[i] = i
	}
	return &kdIndex{src: src, ref: ref, root: buildKD(ref, rows), checks: checks}
}

func buildKD(ref *Descriptors, rows []int) *kdNode {
	if len(rows) <= kdLeafSize {
		return &kdNode{rows: rows}
	}

	// split on the dimension with the largest spread
	dim, best := -1, 0.0
	col := make([]float64, len(rows))
	for d := 0; d < ref.Cols(); d++ {
		for i, r := range rows {
			col[i] = ref.FloatRow(r)[d]
		}
		if v := stat.Variance(col, nil); v > best {
			dim, best = d, v
		}
	}
	if dim < 0 {
		return &kdNode{rows: rows}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return ref.FloatRow(rows[i])[dim] < ref.FloatRow(rows[j])[dim]
	})
	mid := len(rows) / 2
	split := ref.FloatRow(rows[mid])[dim]
	// keep equal values on the right so both halves are non-empty
	for mid > 0 && ref.FloatRow(rows[mid-1])[dim] == split {
		mid--
	}
	if mid == 0 {
		return &kdNode{rows: rows}
	}
	return &kdNode{
		dim:   dim,
		split: split,
		left:  buildKD(ref, rows[:mid]),
		right: buildKD(ref, rows[mid:]),
	}
}

func (t *kdIndex) knn(q, k int) []Match {
	query := t.src.FloatRow(q)
	res := &neighborHeap{}
	branches := &branchHeap{{node: t.root}}
	leaves := 0

	for branches.Len() > 0 {
		b := heap.Pop(branches).(branch)
		if res.Len() == k && b.bound > (*res)[0].dist {
			break
		}
		if t.checks > 0 && leaves >= t.checks && res.Len() == k {
			break
		}
		n := b.node
		for n.rows == nil {
			diff := query[n.dim] - n.split
			near, far := n.left, n.right
			if diff >= 0 {
				near, far = n.right, n.left
			}
			bound := b.bound
			if d2 := diff * diff; d2 > bound {
				bound = d2
			}
			heap.Push(branches, branch{node: far, bound: bound})
			n = near
		}
		leaves++
		for _, r := range n.rows {
			c := neighbor{row: r, dist: squaredDistance(query, t.ref.FloatRow(r))}
			switch {
			case res.Len() < k:
				heap.Push(res, c)
			case c.less((*res)[0]):
				(*res)[0] = c
				heap.Fix(res, 0)
			}
		}
	}

	out := make([]Match, res.Len())
	for i := len(out) - 1; i >= 0; i-- {
		c := heap.Pop(res).(neighbor)
		out[i] = Match{
			QueryIdx: q,
			TrainIdx: c.row,
			Distance: floats.Distance(query, t.ref.FloatRow(c.row), 2),
		}
	}
	return out
}

func squaredDistance(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

type neighbor struct {
	row  int
	dist float64
}

func (n neighbor) less(o neighbor) bool {
	if n.dist != o.dist {
		return n.dist < o.dist
	}
	return n.row < o.row
}

// neighborHeap is a max-heap: the worst kept neighbour sits at the root.
type neighborHeap []neighbor

func (h neighborHeap) Len() int            { return len(h) }
func (h neighborHeap) Less(i, j int) bool  { return h[j].less(h[i]) }
func (h neighborHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x interface{}) { *h = append(*h, x.(neighbor)) }
func (h *neighborHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// branch is an unexplored subtree with a lower bound on the squared
// distance from the query to anything inside it.
type branch struct {
	node  *kdNode
	bound float64
}

type branchHeap []branch

func (h branchHeap) Len() int            { return len(h) }
func (h branchHeap) Less(i, j int) bool  { return h[i].bound < h[j].bound }
func (h branchHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *branchHeap) Push(x interface{}) { *h = append(*h, x.(branch)) }
func (h *branchHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
