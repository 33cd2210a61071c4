package dataset

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestStratifiedSplit_PreservesClassShare(t *testing.T) {
	y := make([]int, 1000)
	for i := 0; i < 140; i++ {
		y[i] = 1
	}

	train, test, err := StratifiedSplit(y, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, test, 200)
	assert.Len(t, train, 800)

	positives := 0
	for _, i := range test {
		positives += y[i]
	}
	assert.Equal(t, 28, positives)

	all := append(append([]int(nil), train...), test...)
	sort.Ints(all)
	for i, v := range all {
		require.Equal(t, i, v, "every row appears exactly once")
	}
}

func TestStratifiedSplit_Deterministic(t *testing.T) {
	y := []int{0, 0, 1, 1, 0, 0, 1, 0, 0, 1, 0, 0}

	train1, test1, err := StratifiedSplit(y, 0.25, 42)
	require.NoError(t, err)
	train2, test2, err := StratifiedSplit(y, 0.25, 42)
	require.NoError(t, err)
	assert.Equal(t, train1, train2)
	assert.Equal(t, test1, test2)

	_, test3, err := StratifiedSplit(y, 0.25, 43)
	require.NoError(t, err)
	assert.Len(t, test3, len(test1))
}

func TestStratifiedSplit_SmallSynthetic(t *testing.T) {
	y := []int{0, 0, 1, 1, 0, 0, 1, 0}

	train, test, err := StratifiedSplit(y, 0.2, 42)
	require.NoError(t, err)
	require.Len(t, test, 2)
	require.Len(t, train, 6)

	testLabels := Labels(y, test)
	sort.Ints(testLabels)
	assert.Equal(t, []int{0, 1}, testLabels)
}

func TestStratifiedSplit_Errors(t *testing.T) {
	_, _, err := StratifiedSplit([]int{0, 0, 0, 1}, 0.5, 42)
	assert.ErrorContains(t, err, "class 1")

	_, _, err = StratifiedSplit([]int{0, 0, 1, 1}, 0, 42)
	assert.Error(t, err)

	_, _, err = StratifiedSplit([]int{0, 0, 1, 1}, 1, 42)
	assert.Error(t, err)

	_, _, err = StratifiedSplit([]int{0, 0, 1, 1}, 0.9, 42)
	assert.Error(t, err)
}

func TestRowsAndLabels(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	sub := Rows(X, []int{2, 0})
	assert.Equal(t, []float64{5, 6, 1, 2}, sub.RawMatrix().Data)
	assert.Equal(t, []int{7, 9}, Labels([]int{9, 8, 7}, []int{2, 0}))
}
