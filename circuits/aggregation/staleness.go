package aggregation

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/cmp"
)

// assertSameMultiset constrains two equal-length arrays to hold the same
// values with the same multiplicities, in any order. For every element of a,
// its occurrence count in a must equal its occurrence count in b; because
// both arrays have the same fixed length, matching counts for every element
// of a account for every entry of b as well.
func assertSameMultiset(api frontend.API, a, b []frontend.Variable) {
	for i := range a {
		var inA frontend.Variable = 0
		var inB frontend.Variable = 0
		for j := range a {
			inA = api.Add(inA, api.IsZero(api.Sub(a[i], a[j])))
			inB = api.Add(inB, api.IsZero(api.Sub(a[i], b[j])))
		}
		api.AssertIsEqual(inA, inB)
	}
}

// assertFreshTimestamps computes the median of the active timestamps from
// the prover-supplied sorted hint and bounds every active timestamp to
// (median - threshold, median]. The hint is verified in-circuit: it must be
// a permutation of the timestamp array and sorted over the active prefix.
//
// The lower bound is checked as median < timestamp + threshold. This is the
// same inequality as timestamp > median - threshold but cannot underflow in
// the field when the median is smaller than the threshold.
func assertFreshTimestamps(api frontend.API, timestamps, sortedHint, mask []frontend.Variable, count frontend.Variable, threshold int) frontend.Variable {
	assertSameMultiset(api, timestamps, sortedHint)
	assertSortedActive(api, sortedHint, mask)
	median := medianActive(api, sortedHint, count)

	for i := range timestamps {
		notNewer := cmp.IsLessOrEqual(api, timestamps[i], median)
		api.AssertIsEqual(api.Mul(mask[i], api.Sub(1, notNewer)), 0)

		fresh := cmp.IsLess(api, median, api.Add(timestamps[i], threshold))
		api.AssertIsEqual(api.Mul(mask[i], api.Sub(1, fresh)), 0)
	}

	return median
}
