package aggregation

import (
	"fmt"
	"math"
	"sort"

	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/std/signature/eddsa"

	"github.com/berendjan/pyth-zkproof/pkg/quote"
	"github.com/berendjan/pyth-zkproof/pkg/stats"
)

// ModelEntry selects how one derived comparison value is computed from the
// quote arrays.
type ModelEntry struct {
	PriceIdx int
	ConfIdx  int
	Op       int
}

// WitnessResult holds the fully populated circuit assignment and the
// natively computed aggregate that callers typically need for logging or
// fixture export.
type WitnessResult struct {
	Assignment Circuit

	P25        uint64
	P50        uint64
	P75        uint64
	Confidence uint64
	Fee        uint64

	Derived []uint64
}

// derivedValue computes a model entry's comparison value natively. Callers
// must have validated the entry against overflow first.
func derivedValue(quotes []quote.Quote, e ModelEntry) uint64 {
	p := quotes[e.PriceIdx].Price
	c := quotes[e.ConfIdx].Conf
	switch e.Op {
	case OpSubConf:
		return p - c
	case OpAddConf:
		return p + c
	default:
		return p
	}
}

// BuildModel produces the canonical price model for a batch: one
// subtract/passthrough/add triple per quote, globally ordered by derived
// value so the in-circuit sortedness constraint holds.
func BuildModel(quotes []quote.Quote) ([]ModelEntry, error) {
	entries := make([]ModelEntry, 0, 3*len(quotes))
	for i, q := range quotes {
		if q.Conf > q.Price {
			return nil, fmt.Errorf("quote %d: confidence %d exceeds price %d", i, q.Conf, q.Price)
		}
		if q.Price > math.MaxUint64-q.Conf {
			return nil, fmt.Errorf("quote %d: price %d + confidence %d exceeds 64 bits", i, q.Price, q.Conf)
		}
		entries = append(entries,
			ModelEntry{PriceIdx: i, ConfIdx: i, Op: OpSubConf},
			ModelEntry{PriceIdx: i, ConfIdx: i, Op: OpPassthrough},
			ModelEntry{PriceIdx: i, ConfIdx: i, Op: OpAddConf},
		)
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return derivedValue(quotes, entries[a]) < derivedValue(quotes, entries[b])
	})
	return entries, nil
}

// PrepareWitness maps a batch of signed quotes to a full circuit
// assignment: sentinel-padded arrays, the sorted timestamp hint, the
// canonical price model, zeroed padding signature slots, and the natively
// computed public outputs.
//
// It does not validate staleness or signatures; run pkg/precheck first to
// get a diagnosis instead of an unsatisfiable proof attempt.
func PrepareWitness(batch []*quote.SignedQuote, fee uint64) (*WitnessResult, error) {
	n := len(batch)
	if n == 0 {
		return nil, fmt.Errorf("empty batch")
	}
	if n > MaxQuotes {
		return nil, fmt.Errorf("batch size %d exceeds capacity %d", n, MaxQuotes)
	}

	sentinel := quote.Sentinel()

	quotes := make([]quote.Quote, n)
	for i, sq := range batch {
		quotes[i] = sq.Quote
	}

	var a Circuit
	a.NumQuotes = n

	for i := 0; i < MaxQuotes; i++ {
		if i < n {
			a.Prices[i] = quotes[i].Price
			a.Confs[i] = quotes[i].Conf
			a.Timestamps[i] = quotes[i].Timestamp
			if quotes[i].ObservedOnline {
				a.ObservedOnline[i] = 1
			} else {
				a.ObservedOnline[i] = 0
			}
			a.PublicKeys[i].Assign(tedwards.BN254, batch[i].PublicKey)
			a.Signatures[i].Assign(tedwards.BN254, batch[i].Signature)
		} else {
			a.Prices[i] = sentinel
			a.Confs[i] = sentinel
			a.Timestamps[i] = sentinel
			a.ObservedOnline[i] = sentinel
			zeroSignatureSlot(&a.Signatures[i], &a.PublicKeys[i])
		}
	}

	// Sorted timestamp hint, sentinel-padded like its source array.
	sortedTs := make([]uint64, n)
	for i, q := range quotes {
		sortedTs[i] = q.Timestamp
	}
	sort.Slice(sortedTs, func(i, j int) bool { return sortedTs[i] < sortedTs[j] })
	for i := 0; i < MaxQuotes; i++ {
		if i < n {
			a.TimestampsSorted[i] = sortedTs[i]
		} else {
			a.TimestampsSorted[i] = sentinel
		}
	}

	model, err := BuildModel(quotes)
	if err != nil {
		return nil, fmt.Errorf("build price model: %w", err)
	}
	derived := make([]uint64, len(model))
	for i, e := range model {
		derived[i] = derivedValue(quotes, e)
	}
	for i := 0; i < ModelSlots; i++ {
		if i < len(model) {
			a.ModelPriceIdx[i] = model[i].PriceIdx
			a.ModelConfIdx[i] = model[i].ConfIdx
			a.ModelOp[i] = model[i].Op
		} else {
			a.ModelPriceIdx[i] = sentinel
			a.ModelConfIdx[i] = sentinel
			a.ModelOp[i] = sentinel
		}
	}

	p25, p50, p75 := stats.Percentiles(derived)
	confidence := stats.ConfidenceWidth(p25, p50, p75)

	a.P25 = p25
	a.P50 = p50
	a.P75 = p75
	a.Confidence = confidence
	a.Fee = fee

	return &WitnessResult{
		Assignment: a,
		P25:        p25,
		P50:        p50,
		P75:        p75,
		Confidence: confidence,
		Fee:        fee,
		Derived:    derived,
	}, nil
}

// zeroSignatureSlot fills a padding slot with the identity point and a zero
// scalar, matching the circuit's padding pin.
func zeroSignatureSlot(sig *eddsa.Signature, pub *eddsa.PublicKey) {
	sig.R.X = 0
	sig.R.Y = 1
	sig.S = 0
	pub.A.X = 0
	pub.A.Y = 1
}
