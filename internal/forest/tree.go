package forest

import (
	"math"
	"math/rand"
	"sort"
)

// featureThreshold is the minimum gap between two sorted values for a
// split point to be placed between them.
const featureThreshold = 1e-7

// Node is one entry of a flattened tree. Internal nodes route x[Feature] <=
// Threshold to Left; leaves carry the class distribution of the bootstrap
// samples that reached them.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Leaf      bool
	Proba     [NumClasses]float64
}

// Tree is a binary CART classification tree stored as a flat node slice with
// the root at index 0.
type Tree struct {
	Nodes []Node
}

// Depth returns the longest root-to-leaf path length.
func (t *Tree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var walk func(i int) int
	walk = func(i int) int {
		n := t.Nodes[i]
		if n.Leaf {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(0)
}

// leafProba follows x down to a leaf.
func (t *Tree) leafProba(x []float64) ([NumClasses]float64, error) {
	if len(t.Nodes) == 0 {
		return [NumClasses]float64{}, ErrNotFitted
	}
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n.Proba, nil
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
		if i <= 0 || i >= len(t.Nodes) {
			return [NumClasses]float64{}, ErrCorruptTree
		}
	}
}

type treeBuilder struct {
	X               [][]float64
	y               []int
	maxDepth        int
	maxFeatures     int
	minSamplesSplit int
	rng             *rand.Rand
	nodes           []Node
}

// build grows the subtree for samples and returns its node index.
func (b *treeBuilder) build(samples []int, depth int) int {
	counts := classCounts(b.y, samples)
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Leaf: true, Proba: normalize(counts)})

	if depth >= b.maxDepth || len(samples) < b.minSamplesSplit || isPure(counts) {
		return idx
	}

	feature, threshold, ok := b.bestSplit(samples, counts)
	if !ok {
		return idx
	}

	left := make([]int, 0, len(samples)/2)
	right := make([]int, 0, len(samples)/2)
	for _, s := range samples {
		if b.X[s][feature] <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return idx
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[idx] = Node{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return idx
}

type valueCounts struct {
	value  float64
	counts [NumClasses]float64
}

// bestSplit draws candidate features in random order and evaluates every
// split point of each non-constant one until maxFeatures non-constant
// features were seen. Constant features do not count against the budget.
func (b *treeBuilder) bestSplit(samples []int, parent [NumClasses]float64) (int, float64, bool) {
	nFeatures := len(b.X[0])
	order := b.rng.Perm(nFeatures)
	total := float64(len(samples))

	bestFeature := -1
	bestThreshold := 0.0
	bestImpurity := math.Inf(1)
	visited := 0

	hist := make(map[float64]*valueCounts)
	for _, f := range order {
		if visited >= b.maxFeatures {
			break
		}

		clear(hist)
		for _, s := range samples {
			v := b.X[s][f]
			vc, ok := hist[v]
			if !ok {
				vc = &valueCounts{value: v}
				hist[v] = vc
			}
			vc.counts[b.y[s]]++
		}
		if len(hist) < 2 {
			continue
		}
		visited++

		values := make([]*valueCounts, 0, len(hist))
		for _, vc := range hist {
			values = append(values, vc)
		}
		sort.Slice(values, func(i, j int) bool { return values[i].value < values[j].value })

		var left [NumClasses]float64
		var nLeft float64
		for i := 0; i < len(values)-1; i++ {
			for c := range left {
				left[c] += values[i].counts[c]
				nLeft += values[i].counts[c]
			}
			lo, hi := values[i].value, values[i+1].value
			if hi <= lo+featureThreshold {
				continue
			}
			var right [NumClasses]float64
			for c := range right {
				right[c] = parent[c] - left[c]
			}
			nRight := total - nLeft
			impurity := (nLeft*gini(left, nLeft) + nRight*gini(right, nRight)) / total
			if impurity < bestImpurity {
				bestImpurity = impurity
				bestFeature = f
				bestThreshold = lo + (hi-lo)/2
				if bestThreshold >= hi {
					bestThreshold = lo
				}
			}
		}
	}

	if bestFeature < 0 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func classCounts(y []int, samples []int) [NumClasses]float64 {
	var counts [NumClasses]float64
	for _, s := range samples {
		counts[y[s]]++
	}
	return counts
}

func normalize(counts [NumClasses]float64) [NumClasses]float64 {
	var total float64
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return counts
	}
	for i := range counts {
		counts[i] /= total
	}
	return counts
}

func isPure(counts [NumClasses]float64) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func gini(counts [NumClasses]float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := c / n
		impurity -= p * p
	}
	return impurity
}
