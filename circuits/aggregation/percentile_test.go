package aggregation

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"

	"github.com/berendjan/pyth-zkproof/pkg/quote"
)

// percentileCircuit extracts the three percentile ranks and the confidence
// width from a sorted array with an active prefix.
type percentileCircuit struct {
	Count  frontend.Variable
	Values [8]frontend.Variable
	P25    frontend.Variable
	P50    frontend.Variable
	P75    frontend.Variable
	Width  frontend.Variable
}

func (c *percentileCircuit) Define(api frontend.API) error {
	p25, p50, p75 := percentiles(api, c.Values[:], c.Count)
	api.AssertIsEqual(p25, c.P25)
	api.AssertIsEqual(p50, c.P50)
	api.AssertIsEqual(p75, c.P75)
	api.AssertIsEqual(confidenceWidth(api, p25, p50, p75), c.Width)
	return nil
}

func percentileAssignment(values []uint64, p25, p50, p75, width uint64) *percentileCircuit {
	var w percentileCircuit
	w.Count = len(values)
	for i := range w.Values {
		if i < len(values) {
			w.Values[i] = values[i]
		} else {
			w.Values[i] = quote.Sentinel()
		}
	}
	w.P25, w.P50, w.P75, w.Width = p25, p50, p75, width
	return &w
}

func TestPercentileRanks(t *testing.T) {
	cases := []struct {
		name                 string
		values               []uint64
		p25, p50, p75, width uint64
	}{
		// Even count resolves ties to the lower middle: median of four is
		// the second element.
		{"four_values", []uint64{10, 20, 30, 40}, 10, 20, 30, 10},
		{"wide_upper_half", []uint64{10, 20, 50, 60}, 10, 20, 50, 30},
		{"five_values", []uint64{5, 10, 20, 25, 90}, 10, 20, 25, 10},
		{"single_value", []uint64{42}, 42, 42, 42, 0},
		{"all_equal", []uint64{7, 7, 7, 7, 7, 7}, 7, 7, 7, 0},
		{"full_capacity", []uint64{1, 2, 3, 4, 5, 6, 7, 8}, 2, 4, 6, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := percentileAssignment(tc.values, tc.p25, tc.p50, tc.p75, tc.width)
			if err := test.IsSolved(&percentileCircuit{}, w, ecc.BN254.ScalarField()); err != nil {
				t.Fatalf("percentiles rejected: %v", err)
			}
		})
	}
}

func TestPercentileRejectsWrongClaim(t *testing.T) {
	w := percentileAssignment([]uint64{10, 20, 30, 40}, 10, 30, 30, 10)
	if err := test.IsSolved(&percentileCircuit{}, w, ecc.BN254.ScalarField()); err == nil {
		t.Fatal("expected wrong median claim to be rejected")
	}
}
