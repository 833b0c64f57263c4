package aggregation

import (
	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/consensys/gnark/std/signature/eddsa"

	"github.com/berendjan/pyth-zkproof/pkg/quote"
)

// Circuit proves that the published price percentiles and confidence width
// were aggregated from NumQuotes authentically signed, mutually consistent
// publisher quotes, without revealing the quotes themselves.
//
// Every fixed-capacity array shares the same active count and sentinel
// convention: the first NumQuotes slots (3*NumQuotes for the price model)
// hold real data, all later slots hold the field representation of -1.
//
// Public witness order (= Solidity input order): p25, p50, p75, confidence, fee.
type Circuit struct {
	// Public outputs
	P25        frontend.Variable `gnark:"p25,public"`
	P50        frontend.Variable `gnark:"p50,public"`
	P75        frontend.Variable `gnark:"p75,public"`
	Confidence frontend.Variable `gnark:"confidence,public"`
	// Fee is re-exposed unchanged so the consuming contract can charge it
	// without trusting an off-chain claim.
	Fee frontend.Variable `gnark:"fee,public"`

	// Private witness
	NumQuotes      frontend.Variable
	Prices         [MaxQuotes]frontend.Variable
	Confs          [MaxQuotes]frontend.Variable
	Timestamps     [MaxQuotes]frontend.Variable
	ObservedOnline [MaxQuotes]frontend.Variable

	// TimestampsSorted is the prover's sort of Timestamps; the circuit
	// verifies it is a permutation and actually sorted before using it.
	TimestampsSorted [MaxQuotes]frontend.Variable

	PublicKeys [MaxQuotes]eddsa.PublicKey
	Signatures [MaxQuotes]eddsa.Signature

	// Price model: per slot, which quote's price/conf to read and which
	// operation derives the comparison value.
	ModelPriceIdx [ModelSlots]frontend.Variable
	ModelConfIdx  [ModelSlots]frontend.Variable
	ModelOp       [ModelSlots]frontend.Variable
}

func (circuit *Circuit) Define(api frontend.API) error {
	sentinel := frontend.Variable(quote.Sentinel())

	// 1. Active count: at least one quote, at most the array capacity.
	api.AssertIsDifferent(circuit.NumQuotes, 0)
	api.AssertIsLessOrEqual(circuit.NumQuotes, MaxQuotes)

	quoteMask := activeMask(api, circuit.NumQuotes, MaxQuotes)
	modelCount := api.Mul(circuit.NumQuotes, 3)
	slotMask := activeMask(api, modelCount, ModelSlots)

	// 2. Sentinel layout of every fixed-capacity array.
	assertWellFormed(api, circuit.Prices[:], quoteMask, sentinel)
	assertWellFormed(api, circuit.Confs[:], quoteMask, sentinel)
	assertWellFormed(api, circuit.Timestamps[:], quoteMask, sentinel)
	assertWellFormed(api, circuit.ObservedOnline[:], quoteMask, sentinel)
	assertWellFormed(api, circuit.TimestampsSorted[:], quoteMask, sentinel)
	assertWellFormed(api, circuit.ModelPriceIdx[:], slotMask, sentinel)
	assertWellFormed(api, circuit.ModelConfIdx[:], slotMask, sentinel)
	assertWellFormed(api, circuit.ModelOp[:], slotMask, sentinel)

	// 3. Active online flags are booleans; active timestamps fit 64 bits so
	// the window comparisons below operate on bounded values.
	for i := 0; i < MaxQuotes; i++ {
		api.AssertIsBoolean(api.Select(quoteMask[i], circuit.ObservedOnline[i], 0))
		api.ToBinary(api.Select(quoteMask[i], circuit.Timestamps[i], 0), 64)
	}

	// 4. Per-quote signature authenticity over encode64(price)||encode64(conf).
	curve, err := twistededwards.NewEdCurve(api, tedwards.BN254)
	if err != nil {
		return err
	}
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	for i := 0; i < MaxQuotes; i++ {
		price := api.Select(quoteMask[i], circuit.Prices[i], 0)
		conf := api.Select(quoteMask[i], circuit.Confs[i], 0)
		msg := quoteMessage(api, price, conf)
		verifySignature(api, curve, &h, circuit.Signatures[i], circuit.PublicKeys[i], msg, quoteMask[i])
		assertPaddingSignature(api, circuit.Signatures[i], circuit.PublicKeys[i], api.Sub(1, quoteMask[i]))
	}
	// TODO: constrain PublicKeys against a registered publisher allow-list;
	// today any witness-supplied key that signs its own quote verifies.

	// 5. Staleness: every active timestamp inside (median-threshold, median].
	assertFreshTimestamps(api, circuit.Timestamps[:], circuit.TimestampsSorted[:], quoteMask, circuit.NumQuotes, TimestampThreshold)

	// 6. Price model evaluation; the derived array must be non-decreasing
	// over its active prefix, which is what makes the percentile ranks
	// below meaningful.
	derived := evaluateModel(api, circuit.Prices[:], circuit.Confs[:], circuit.ModelPriceIdx[:], circuit.ModelConfIdx[:], circuit.ModelOp[:], slotMask, circuit.NumQuotes, sentinel)
	assertSortedActive(api, derived, slotMask)

	// 7. Percentiles and the confidence width, tied to the public outputs.
	p25, p50, p75 := percentiles(api, derived, modelCount)
	api.AssertIsEqual(circuit.P25, p25)
	api.AssertIsEqual(circuit.P50, p50)
	api.AssertIsEqual(circuit.P75, p75)
	api.AssertIsEqual(circuit.Confidence, confidenceWidth(api, p25, p50, p75))

	// Fee is a public pass-through with no constraint.
	_ = circuit.Fee

	return nil
}
