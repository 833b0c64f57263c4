package aggregation

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/cmp"
	"github.com/consensys/gnark/std/selector"
)

// rankIndex returns the 0-based index of the 1-based rank ceil(num*m/den)
// in a sorted prefix of m elements. Even counts resolve to the lower
// middle: sorted [10,20,30,40] has its median at index 1.
func rankIndex(m, num, den int) int {
	if m == 0 {
		// Counts are constrained >= 1; the zero row only pads the table.
		return 0
	}
	return (num*m+den-1)/den - 1
}

// rankTable lists the rank index for every possible active count 0..maxCount,
// to be muxed by the live count variable.
func rankTable(maxCount, num, den int) []frontend.Variable {
	t := make([]frontend.Variable, maxCount+1)
	for m := 0; m <= maxCount; m++ {
		t[m] = rankIndex(m, num, den)
	}
	return t
}

// assertSortedActive constrains the active prefix of values to be
// non-decreasing. Comparisons that touch the padding region are computed
// but not enforced, so sentinel entries cannot make the system
// unsatisfiable. The active region is a prefix, so gating on mask[i] alone
// suffices: an active slot i implies slot i-1 is active too.
func assertSortedActive(api frontend.API, values, mask []frontend.Variable) {
	for i := 1; i < len(values); i++ {
		ordered := cmp.IsLessOrEqual(api, values[i-1], values[i])
		api.AssertIsEqual(api.Mul(mask[i], api.Sub(1, ordered)), 0)
	}
}

// percentiles extracts the 25th/50th/75th percentile elements of the sorted
// active prefix. Both the rank lookup and the element lookup go through a
// fully constrained mux; count must already be constrained to
// [1, len(sorted)], which also keeps every rank index inside the prefix.
func percentiles(api frontend.API, sorted []frontend.Variable, count frontend.Variable) (p25, p50, p75 frontend.Variable) {
	n := len(sorted)
	i25 := selector.Mux(api, count, rankTable(n, 1, 4)...)
	i50 := selector.Mux(api, count, rankTable(n, 1, 2)...)
	i75 := selector.Mux(api, count, rankTable(n, 3, 4)...)

	p25 = selector.Mux(api, i25, sorted...)
	p50 = selector.Mux(api, i50, sorted...)
	p75 = selector.Mux(api, i75, sorted...)
	return p25, p50, p75
}

// medianActive returns the element at the median rank of the sorted active
// prefix.
func medianActive(api frontend.API, sorted []frontend.Variable, count frontend.Variable) frontend.Variable {
	idx := selector.Mux(api, count, rankTable(len(sorted), 1, 2)...)
	return selector.Mux(api, idx, sorted...)
}

// confidenceWidth returns max(p50-p25, p75-p50). The indicator comes from a
// constrained comparison and api.Select requires a boolean, so the branch
// choice cannot be a free witness hint.
func confidenceWidth(api frontend.API, p25, p50, p75 frontend.Variable) frontend.Variable {
	left := api.Sub(p50, p25)
	right := api.Sub(p75, p50)
	rightLarger := cmp.IsLess(api, left, right)
	return api.Select(rightLarger, right, left)
}
