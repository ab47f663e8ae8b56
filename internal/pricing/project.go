package pricing

import (
	"errors"
	"fmt"
)

// ErrProjectCycle is returned when a project is reachable from itself
var ErrProjectCycle = errors.New("project tree contains a cycle")

// ChildrenFunc returns the IDs of the direct child projects of a project
type ChildrenFunc func(projectID int64) ([]int64, error)

// WalkProjectTree returns rootID followed by all of its descendants in
// depth-first order. Reaching a project twice fails with ErrProjectCycle.
func WalkProjectTree(rootID int64, children ChildrenFunc) ([]int64, error) {
	visited := map[int64]bool{}
	order := make([]int64, 0)
	stack := []int64{rootID}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[id] {
			return nil, fmt.Errorf("%w: project %d reached twice", ErrProjectCycle, id)
		}
		visited[id] = true
		order = append(order, id)

		kids, err := children(id)
		if err != nil {
			return nil, err
		}
		// push in reverse so the first child is visited first
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}

	return order, nil
}

// ProjectLine is the billed amount of a single project in a tree
type ProjectLine struct {
	ProjectID int64
	Name      string
	Hours     float64
	Rate      float64
	Amount    float64
}

// ProjectTotals is a project tree invoice: per-project lines, then a flat
// discount and a flat tax on the sum.
type ProjectTotals struct {
	Lines           []ProjectLine
	Subtotal        float64
	DiscountPercent float64
	DiscountAmount  float64
	TaxRate         float64
	TaxAmount       float64
	Total           float64
}

// TotalProjects sums the lines, applies discountPercent (10 = 10%) and then
// taxRate (0.21 = 21%). Amounts round half away from zero.
func TotalProjects(lines []ProjectLine, discountPercent, taxRate float64) ProjectTotals {
	t := ProjectTotals{
		Lines:           lines,
		DiscountPercent: discountPercent,
		TaxRate:         taxRate,
	}
	for _, l := range lines {
		t.Subtotal += l.Amount
	}
	t.Subtotal = roundCents(t.Subtotal)

	t.DiscountAmount = roundCents(t.Subtotal * discountPercent / 100)
	discounted := t.Subtotal - t.DiscountAmount

	t.TaxAmount = roundCents(discounted * taxRate)
	t.Total = roundCents(discounted + t.TaxAmount)
	return t
}

// LineFunc prices one project of a tree
type LineFunc func(projectID int64) (ProjectLine, error)

// ProjectTreeTotals walks the tree under rootID, prices every project with
// line and totals the result.
func ProjectTreeTotals(rootID int64, children ChildrenFunc, line LineFunc, discountPercent, taxRate float64) (ProjectTotals, error) {
	ids, err := WalkProjectTree(rootID, children)
	if err != nil {
		return ProjectTotals{}, err
	}

	lines := make([]ProjectLine, 0, len(ids))
	for _, id := range ids {
		l, err := line(id)
		if err != nil {
			return ProjectTotals{}, err
		}
		lines = append(lines, l)
	}

	return TotalProjects(lines, discountPercent, taxRate), nil
}
