package aggregation

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/cmp"
	"github.com/consensys/gnark/std/selector"
)

// evaluateModel derives the comparison value for each price model slot:
// price[idx] - conf[idx], price[idx], or price[idx] + conf[idx] for
// operations 0, 1, 2 — algebraically price + (op-1)*conf.
//
// Every lookup goes through a fully constrained mux, so a witness cannot
// claim one index and read another. Active indices are additionally bounded
// by the live quote count, and active operations by their {0,1,2} domain.
// Padding slots derive the sentinel, keeping the derived array under the
// same layout convention as its inputs.
func evaluateModel(api frontend.API, prices, confs, priceIdx, confIdx, ops, slotMask []frontend.Variable, numQuotes, sentinel frontend.Variable) []frontend.Variable {
	derived := make([]frontend.Variable, len(ops))
	for i := range ops {
		active := slotMask[i]

		// Sentinel padding values are remapped to harmless defaults before
		// the domain checks and muxes; the results are masked out below.
		pIdx := api.Select(active, priceIdx[i], 0)
		cIdx := api.Select(active, confIdx[i], 0)
		op := api.Select(active, ops[i], OpPassthrough)

		pInRange := cmp.IsLess(api, pIdx, numQuotes)
		api.AssertIsEqual(api.Mul(active, api.Sub(1, pInRange)), 0)
		cInRange := cmp.IsLess(api, cIdx, numQuotes)
		api.AssertIsEqual(api.Mul(active, api.Sub(1, cInRange)), 0)

		opDomain := api.Mul(api.Mul(op, api.Sub(op, OpPassthrough)), api.Sub(op, OpAddConf))
		api.AssertIsEqual(opDomain, 0)

		price := selector.Mux(api, pIdx, prices...)
		conf := selector.Mux(api, cIdx, confs...)
		value := api.Add(price, api.Mul(api.Sub(op, 1), conf))

		// Active derived values must stay inside 64 bits: a confidence
		// larger than its price, or a sum crossing 2^64, makes the slot
		// unsatisfiable instead of wrapping around the field and slipping
		// past the ordering check.
		api.ToBinary(api.Select(active, value, 0), 64)

		derived[i] = api.Select(active, value, sentinel)
	}
	return derived
}
