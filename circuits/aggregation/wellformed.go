package aggregation

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/cmp"
)

// activeMask returns one boolean per slot of a capacity-length array, set to
// 1 when the slot index lies below the active count.
func activeMask(api frontend.API, count frontend.Variable, capacity int) []frontend.Variable {
	mask := make([]frontend.Variable, capacity)
	for i := 0; i < capacity; i++ {
		mask[i] = cmp.IsLess(api, i, count)
	}
	return mask
}

// assertWellFormed enforces the sentinel layout of a fixed-capacity array:
// active slots differ from the sentinel, padding slots equal it. The single
// equality isSentinel == 1 - active covers both directions, so a sentinel
// leaking into the active region is as unsatisfiable as real data leaking
// into the padding.
func assertWellFormed(api frontend.API, values, mask []frontend.Variable, sentinel frontend.Variable) {
	for i := range values {
		isSentinel := api.IsZero(api.Sub(values[i], sentinel))
		api.AssertIsEqual(isSentinel, api.Sub(1, mask[i]))
	}
}
