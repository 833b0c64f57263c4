package aggregation

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"

	"github.com/berendjan/pyth-zkproof/pkg/quote"
)

// modelCircuit exercises the price model evaluation with a two-quote
// capacity, including the sortedness constraint over the derived values.
type modelCircuit struct {
	NumQuotes frontend.Variable
	Prices    [2]frontend.Variable
	Confs     [2]frontend.Variable
	PriceIdx  [6]frontend.Variable
	ConfIdx   [6]frontend.Variable
	Op        [6]frontend.Variable
	Derived   [6]frontend.Variable
}

func (c *modelCircuit) Define(api frontend.API) error {
	slotMask := activeMask(api, api.Mul(c.NumQuotes, 3), len(c.Op))
	derived := evaluateModel(api, c.Prices[:], c.Confs[:], c.PriceIdx[:], c.ConfIdx[:], c.Op[:], slotMask, c.NumQuotes, frontend.Variable(quote.Sentinel()))
	assertSortedActive(api, derived, slotMask)
	for i := range derived {
		api.AssertIsEqual(derived[i], c.Derived[i])
	}
	return nil
}

// singleQuoteModel assigns one quote (price 100, conf 5) with its canonical
// bid/mid/ask triple and sentinel padding everywhere else.
func singleQuoteModel() *modelCircuit {
	var w modelCircuit
	w.NumQuotes = 1
	w.Prices = [2]frontend.Variable{100, quote.Sentinel()}
	w.Confs = [2]frontend.Variable{5, quote.Sentinel()}
	for i := 0; i < 6; i++ {
		if i < 3 {
			w.PriceIdx[i] = 0
			w.ConfIdx[i] = 0
		} else {
			w.PriceIdx[i] = quote.Sentinel()
			w.ConfIdx[i] = quote.Sentinel()
			w.Op[i] = quote.Sentinel()
			w.Derived[i] = quote.Sentinel()
		}
	}
	w.Op[0], w.Op[1], w.Op[2] = OpSubConf, OpPassthrough, OpAddConf
	w.Derived[0], w.Derived[1], w.Derived[2] = 95, 100, 105
	return &w
}

func TestModelDerivesTriple(t *testing.T) {
	w := singleQuoteModel()
	if err := test.IsSolved(&modelCircuit{}, w, ecc.BN254.ScalarField()); err != nil {
		t.Fatalf("canonical triple rejected: %v", err)
	}
}

func TestModelRejectsUnsortedSlots(t *testing.T) {
	w := singleQuoteModel()
	// Swap ask before bid; the derived values are individually correct but
	// no longer non-decreasing.
	w.Op[0], w.Op[2] = OpAddConf, OpSubConf
	w.Derived[0], w.Derived[2] = 105, 95
	if err := test.IsSolved(&modelCircuit{}, w, ecc.BN254.ScalarField()); err == nil {
		t.Fatal("expected out-of-order derived values to be rejected")
	}
}

func TestModelRejectsUnknownOperation(t *testing.T) {
	w := singleQuoteModel()
	w.Op[2] = 3
	w.Derived[2] = 100 + 2*5
	if err := test.IsSolved(&modelCircuit{}, w, ecc.BN254.ScalarField()); err == nil {
		t.Fatal("expected operation outside {0,1,2} to be rejected")
	}
}

func TestModelRejectsIndexBeyondCount(t *testing.T) {
	w := singleQuoteModel()
	// Slot 1 reads quote 1, which does not exist when NumQuotes is 1.
	w.PriceIdx[1] = 1
	w.ConfIdx[1] = 1
	if err := test.IsSolved(&modelCircuit{}, w, ecc.BN254.ScalarField()); err == nil {
		t.Fatal("expected index beyond the active count to be rejected")
	}
}

func TestModelRejectsConfidenceAbovePrice(t *testing.T) {
	var w modelCircuit
	w.NumQuotes = 1
	// price - conf wraps below zero in the field, so the 64-bit range
	// check on the derived value must fire.
	w.Prices = [2]frontend.Variable{100, quote.Sentinel()}
	w.Confs = [2]frontend.Variable{101, quote.Sentinel()}
	for i := 0; i < 6; i++ {
		if i < 3 {
			w.PriceIdx[i] = 0
			w.ConfIdx[i] = 0
		} else {
			w.PriceIdx[i] = quote.Sentinel()
			w.ConfIdx[i] = quote.Sentinel()
			w.Op[i] = quote.Sentinel()
			w.Derived[i] = quote.Sentinel()
		}
	}
	w.Op[0], w.Op[1], w.Op[2] = OpSubConf, OpPassthrough, OpAddConf
	w.Derived[0] = quote.Sentinel() // value is not representable; any claim fails
	w.Derived[1], w.Derived[2] = 100, 201
	if err := test.IsSolved(&modelCircuit{}, &w, ecc.BN254.ScalarField()); err == nil {
		t.Fatal("expected conf > price to be rejected")
	}
}
