package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func childrenFrom(tree map[int64][]int64) ChildrenFunc {
	return func(id int64) ([]int64, error) {
		return tree[id], nil
	}
}

func TestWalkProjectTree(t *testing.T) {
	tree := map[int64][]int64{
		1: {2, 3},
		2: {4},
		3: {},
	}

	order, err := WalkProjectTree(1, childrenFrom(tree))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 4, 3}, order)
}

func TestWalkProjectTree_Leaf(t *testing.T) {
	order, err := WalkProjectTree(7, childrenFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, order)
}

func TestWalkProjectTree_Cycle(t *testing.T) {
	tree := map[int64][]int64{
		1: {2},
		2: {3},
		3: {1},
	}

	_, err := WalkProjectTree(1, childrenFrom(tree))
	assert.ErrorIs(t, err, ErrProjectCycle)
}

func TestWalkProjectTree_SelfParent(t *testing.T) {
	_, err := WalkProjectTree(5, childrenFrom(map[int64][]int64{5: {5}}))
	assert.ErrorIs(t, err, ErrProjectCycle)
}

func TestWalkProjectTree_ChildrenError(t *testing.T) {
	boom := errors.New("store down")
	_, err := WalkProjectTree(1, func(int64) ([]int64, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestTotalProjects(t *testing.T) {
	lines := []ProjectLine{
		{ProjectID: 1, Amount: 100},
		{ProjectID: 2, Amount: 50.5},
	}

	got := TotalProjects(lines, 10, 0.21)

	assert.InDelta(t, 150.5, got.Subtotal, 1e-9)
	assert.InDelta(t, 15.05, got.DiscountAmount, 1e-9)
	assert.InDelta(t, 28.44, got.TaxAmount, 1e-9) // 135.45 * 0.21 = 28.4445
	assert.InDelta(t, 163.89, got.Total, 1e-9)
	assert.Len(t, got.Lines, 2)
}

func TestTotalProjects_NoDiscountNoTax(t *testing.T) {
	got := TotalProjects([]ProjectLine{{Amount: 12.34}}, 0, 0)
	assert.InDelta(t, 12.34, got.Total, 1e-9)
	assert.Zero(t, got.DiscountAmount)
	assert.Zero(t, got.TaxAmount)
}

func TestProjectTreeTotals(t *testing.T) {
	tree := map[int64][]int64{1: {2}, 2: {}}
	amounts := map[int64]float64{1: 100, 2: 50.5}

	got, err := ProjectTreeTotals(1, childrenFrom(tree), func(id int64) (ProjectLine, error) {
		return ProjectLine{ProjectID: id, Amount: amounts[id]}, nil
	}, 10, 0.21)

	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Lines[0].ProjectID)
	assert.Equal(t, int64(2), got.Lines[1].ProjectID)
	assert.InDelta(t, 163.89, got.Total, 1e-9)
}

func TestProjectTreeTotals_LineError(t *testing.T) {
	boom := errors.New("no rate")
	_, err := ProjectTreeTotals(1, childrenFrom(nil), func(int64) (ProjectLine, error) {
		return ProjectLine{}, boom
	}, 0, 0)
	assert.ErrorIs(t, err, boom)
}
