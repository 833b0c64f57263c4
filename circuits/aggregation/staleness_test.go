package aggregation

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"

	"github.com/berendjan/pyth-zkproof/pkg/quote"
)

// stalenessCircuit exercises the timestamp freshness check with a small
// capacity. Median is exposed so tests can pin the expected value.
type stalenessCircuit struct {
	Count      frontend.Variable
	Timestamps [4]frontend.Variable
	Sorted     [4]frontend.Variable
	Median     frontend.Variable
}

func (c *stalenessCircuit) Define(api frontend.API) error {
	mask := activeMask(api, c.Count, len(c.Timestamps))
	median := assertFreshTimestamps(api, c.Timestamps[:], c.Sorted[:], mask, c.Count, TimestampThreshold)
	api.AssertIsEqual(median, c.Median)
	return nil
}

func stalenessAssignment(timestamps, sorted [4]frontend.Variable, count int, median uint64) *stalenessCircuit {
	return &stalenessCircuit{
		Count:      count,
		Timestamps: timestamps,
		Sorted:     sorted,
		Median:     median,
	}
}

func TestFreshTimestampsAccepted(t *testing.T) {
	// Median 100, every entry inside (90, 100].
	w := stalenessAssignment(
		[4]frontend.Variable{100, 95, 100, 100},
		[4]frontend.Variable{95, 100, 100, 100},
		4, 100,
	)
	if err := test.IsSolved(&stalenessCircuit{}, w, ecc.BN254.ScalarField()); err != nil {
		t.Fatalf("fresh batch rejected: %v", err)
	}
}

func TestBoundaryTimestampRejected(t *testing.T) {
	// 90 == median - threshold sits exactly on the open lower bound.
	w := stalenessAssignment(
		[4]frontend.Variable{100, 90, 100, 100},
		[4]frontend.Variable{90, 100, 100, 100},
		4, 100,
	)
	if err := test.IsSolved(&stalenessCircuit{}, w, ecc.BN254.ScalarField()); err == nil {
		t.Fatal("expected timestamp at median-threshold to be rejected")
	}
}

func TestTimestampNewerThanMedianRejected(t *testing.T) {
	w := stalenessAssignment(
		[4]frontend.Variable{100, 95, 100, 101},
		[4]frontend.Variable{95, 100, 100, 101},
		4, 100,
	)
	if err := test.IsSolved(&stalenessCircuit{}, w, ecc.BN254.ScalarField()); err == nil {
		t.Fatal("expected timestamp above the median to be rejected")
	}
}

func TestUnsortedHintRejected(t *testing.T) {
	w := stalenessAssignment(
		[4]frontend.Variable{100, 95, 100, 100},
		[4]frontend.Variable{100, 95, 100, 100},
		4, 100,
	)
	if err := test.IsSolved(&stalenessCircuit{}, w, ecc.BN254.ScalarField()); err == nil {
		t.Fatal("expected unsorted hint to be rejected")
	}
}

func TestForgedHintRejected(t *testing.T) {
	// The hint is sorted but not a permutation of the timestamps: the
	// prover tries to move the median down to admit a stale quote.
	w := stalenessAssignment(
		[4]frontend.Variable{100, 95, 100, 100},
		[4]frontend.Variable{93, 95, 95, 95},
		4, 95,
	)
	if err := test.IsSolved(&stalenessCircuit{}, w, ecc.BN254.ScalarField()); err == nil {
		t.Fatal("expected non-permutation hint to be rejected")
	}
}

func TestFreshnessWithPadding(t *testing.T) {
	// Two active slots, two sentinel-padded slots in both arrays. Both
	// timestamps sit at the median, which is what the <= median rule
	// demands of the upper element in an even-sized batch.
	w := stalenessAssignment(
		[4]frontend.Variable{1000, 1000, quote.Sentinel(), quote.Sentinel()},
		[4]frontend.Variable{1000, 1000, quote.Sentinel(), quote.Sentinel()},
		2, 1000,
	)
	if err := test.IsSolved(&stalenessCircuit{}, w, ecc.BN254.ScalarField()); err != nil {
		t.Fatalf("padded batch rejected: %v", err)
	}
}
