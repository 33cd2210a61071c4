package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// StratifiedSplit partitions row indices into train and test sets so that
// each class keeps its share of the test set. The same labels, testSize and
// seed always produce the same partition.
//
// The test set holds ceil(testSize*n) rows, allocated to classes by largest
// remainder. Every class needs at least two members.
func StratifiedSplit(y []int, testSize float64, seed int64) (train, test []int, err error) {
	n := len(y)
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be in (0, 1), got %v", testSize)
	}

	byClass := make(map[int][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}
	classes := make([]int, 0, len(byClass))
	for c, members := range byClass {
		if len(members) < 2 {
			return nil, nil, fmt.Errorf("class %d has only %d member; at least 2 are required to stratify", c, len(members))
		}
		classes = append(classes, c)
	}
	sort.Ints(classes)

	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest < len(classes) || nTrain < len(classes) {
		return nil, nil, fmt.Errorf("test size %v on %d rows leaves a split smaller than the %d classes", testSize, n, len(classes))
	}

	alloc := allocate(classes, byClass, nTest, n)

	rng := rand.New(rand.NewSource(seed))
	for _, c := range classes {
		members := append([]int(nil), byClass[c]...)
		rng.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
		test = append(test, members[:alloc[c]]...)
		train = append(train, members[alloc[c]:]...)
	}
	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })
	return train, test, nil
}

// allocate distributes nTest across classes proportionally, handing the
// rounding remainder to the classes with the largest fractional share.
func allocate(classes []int, byClass map[int][]int, nTest, n int) map[int]int {
	type share struct {
		class int
		frac  float64
	}
	alloc := make(map[int]int, len(classes))
	shares := make([]share, 0, len(classes))
	assigned := 0
	for _, c := range classes {
		exact := float64(nTest) * float64(len(byClass[c])) / float64(n)
		whole := int(math.Floor(exact))
		alloc[c] = whole
		assigned += whole
		shares = append(shares, share{class: c, frac: exact - float64(whole)})
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].frac > shares[j].frac })
	for i := 0; assigned < nTest; i = (i + 1) % len(shares) {
		c := shares[i].class
		if alloc[c] < len(byClass[c])-1 {
			alloc[c]++
			assigned++
		}
	}
	return alloc
}

// Rows copies the selected rows of X into a new matrix.
func Rows(X mat.Matrix, idx []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, r := range idx {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(r, j))
		}
	}
	return out
}

// Labels selects the labels at idx.
func Labels(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, r := range idx {
		out[i] = y[r]
	}
	return out
}
