// Package forest implements the random forest classifier behind the diabetes
// risk model: bagged CART trees with gini splits and per-split feature
// subsampling, averaged leaf distributions for probabilities.
package forest

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"
)

// NumClasses is fixed: 0 = no diabetes, 1 = diabetes.
const NumClasses = 2

var (
	ErrNotFitted   = errors.New("forest is not fitted")
	ErrDimension   = errors.New("feature count mismatch")
	ErrCorruptTree = errors.New("corrupt tree")
	ErrBadLabel    = errors.New("label outside {0,1}")
)

// RandomForest is a binary classifier. Exported fields are the persisted
// state; Fit replaces Trees wholesale and nothing mutates them afterwards,
// so a fitted forest is safe for concurrent Predict calls.
type RandomForest struct {
	NEstimators     int
	MaxDepth        int
	MaxFeatures     int // 0 means floor(sqrt(n_features))
	MinSamplesSplit int
	Seed            int64
	NFeatures       int
	Trees           []Tree

	jobs int
}

// Option configures a RandomForest.
type Option func(*RandomForest)

func WithEstimators(n int) Option { return func(f *RandomForest) { f.NEstimators = n } }

func WithMaxDepth(d int) Option { return func(f *RandomForest) { f.MaxDepth = d } }

func WithMaxFeatures(n int) Option { return func(f *RandomForest) { f.MaxFeatures = n } }

func WithMinSamplesSplit(n int) Option { return func(f *RandomForest) { f.MinSamplesSplit = n } }

func WithSeed(seed int64) Option { return func(f *RandomForest) { f.Seed = seed } }

// WithJobs bounds the number of trees fitted in parallel. Results do not
// depend on it.
func WithJobs(n int) Option { return func(f *RandomForest) { f.jobs = n } }

// New returns an unfitted forest: 50 trees, depth 10, seed 42 unless
// overridden.
func New(opts ...Option) *RandomForest {
	f := &RandomForest{
		NEstimators:     50,
		MaxDepth:        10,
		MinSamplesSplit: 2,
		Seed:            42,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsFitted reports whether the forest holds trained trees.
func (f *RandomForest) IsFitted() bool {
	return f != nil && len(f.Trees) > 0 && f.NFeatures > 0
}

// Depth returns the depth of the deepest fitted tree. It can be smaller than
// MaxDepth when splits stop early on pure or small nodes.
func (f *RandomForest) Depth() int {
	depth := 0
	for i := range f.Trees {
		depth = max(depth, f.Trees[i].Depth())
	}
	return depth
}

// Fit trains NEstimators trees on bootstrap resamples of (X, y). Each tree
// draws from its own RNG seeded from Seed, so the fitted forest is identical
// for identical inputs regardless of parallelism.
func (f *RandomForest) Fit(ctx context.Context, X mat.Matrix, y []int) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.New("forest.Fit: empty data")
	}
	if len(y) != r {
		return errors.Newf("forest.Fit: %d rows but %d labels", r, len(y))
	}
	for i, label := range y {
		if label < 0 || label >= NumClasses {
			return errors.Wrapf(ErrBadLabel, "forest.Fit: row %d has label %d", i, label)
		}
	}
	if f.NEstimators <= 0 {
		return errors.Newf("forest.Fit: n_estimators must be positive, got %d", f.NEstimators)
	}
	if f.MaxDepth <= 0 {
		return errors.Newf("forest.Fit: max_depth must be positive, got %d", f.MaxDepth)
	}

	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}

	maxFeatures := f.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(c)))
	}
	maxFeatures = min(max(maxFeatures, 1), c)
	minSplit := max(f.MinSamplesSplit, 2)

	master := rand.New(rand.NewSource(f.Seed))
	seeds := make([]int64, f.NEstimators)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	jobs := f.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	jobs = min(jobs, f.NEstimators)

	trees := make([]Tree, f.NEstimators)
	work := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				trees[i] = fitTree(rows, y, seeds[i], f.MaxDepth, maxFeatures, minSplit)
			}
		}()
	}

	var err error
	for i := range trees {
		if err = ctx.Err(); err != nil {
			break
		}
		work <- i
	}
	close(work)
	wg.Wait()
	if err != nil {
		return errors.Wrap(err, "forest.Fit")
	}

	f.Trees = trees
	f.NFeatures = c
	return nil
}

func fitTree(rows [][]float64, y []int, seed int64, maxDepth, maxFeatures, minSplit int) Tree {
	rng := rand.New(rand.NewSource(seed))
	n := len(rows)
	sample := make([]int, n)
	for i := range sample {
		sample[i] = rng.Intn(n)
	}

	b := &treeBuilder{
		X:               rows,
		y:               y,
		maxDepth:        maxDepth,
		maxFeatures:     maxFeatures,
		minSamplesSplit: minSplit,
		rng:             rng,
	}
	b.build(sample, 0)
	return Tree{Nodes: b.nodes}
}

// PredictProba returns [P(no diabetes), P(diabetes)] for one vector: the mean
// of the per-tree leaf distributions.
func (f *RandomForest) PredictProba(x []float64) ([NumClasses]float64, error) {
	var proba [NumClasses]float64
	if !f.IsFitted() {
		return proba, ErrNotFitted
	}
	if len(x) != f.NFeatures {
		return proba, errors.Wrapf(ErrDimension, "expected %d features, got %d", f.NFeatures, len(x))
	}
	for i := range f.Trees {
		p, err := f.Trees[i].leafProba(x)
		if err != nil {
			return [NumClasses]float64{}, errors.Wrapf(err, "tree %d", i)
		}
		for c := range proba {
			proba[c] += p[c]
		}
	}
	n := float64(len(f.Trees))
	for c := range proba {
		proba[c] /= n
	}
	return proba, nil
}

// Predict returns the class with the highest averaged probability; ties go
// to class 0.
func (f *RandomForest) Predict(x []float64) (int, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return argmax(proba), nil
}

// PredictMatrix predicts every row of X.
func (f *RandomForest) PredictMatrix(X mat.Matrix) ([]int, error) {
	r, c := X.Dims()
	out := make([]int, r)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		label, err := f.Predict(row)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		out[i] = label
	}
	return out, nil
}

func argmax(p [NumClasses]float64) int {
	best := 0
	for c := 1; c < NumClasses; c++ {
		if p[c] > p[best] {
			best = c
		}
	}
	return best
}
