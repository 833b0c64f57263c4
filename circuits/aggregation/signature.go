package aggregation

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/consensys/gnark/std/signature/eddsa"
)

// verifySignature checks the EdDSA verification equation
//
//	[S]G == R + [H(R.X, R.Y, A.X, A.Y, msg)]A
//
// over the prime-order subgroup, with MiMC as the signature hash. The
// cofactor is cleared by doubling before the comparison so low-order
// components cannot satisfy the equation.
//
// The two final point equalities are multiplied by enabled. The slot count
// is a witness value, so every slot's verifier is always part of the
// constraint system; gating keeps padding slots (identity points, S = 0)
// satisfiable while active slots enforce the full equation.
func verifySignature(api frontend.API, curve twistededwards.Curve, h *mimc.MiMC, sig eddsa.Signature, pub eddsa.PublicKey, msg, enabled frontend.Variable) {
	h.Reset()
	h.Write(sig.R.X, sig.R.Y, pub.A.X, pub.A.Y, msg)
	hram := h.Sum()

	params := curve.Params()
	base := twistededwards.Point{X: params.Base[0], Y: params.Base[1]}

	// The scalar-mul hint cannot handle a zero scalar, and padding slots pin
	// S to zero. Substitute 1 on disabled slots; the result never reaches an
	// active constraint because the equalities below are gated.
	s := api.Select(enabled, sig.S, 1)

	lhs := curve.ScalarMul(base, s)
	rhs := curve.Add(sig.R, curve.ScalarMul(pub.A, hram))

	for c := params.Cofactor.Uint64(); c > 1; c /= 2 {
		lhs = curve.Double(lhs)
		rhs = curve.Double(rhs)
	}

	curve.AssertIsOnCurve(rhs)

	api.AssertIsEqual(api.Mul(enabled, api.Sub(lhs.X, rhs.X)), 0)
	api.AssertIsEqual(api.Mul(enabled, api.Sub(lhs.Y, rhs.Y)), 0)
}

// assertPaddingSignature pins an inactive slot's signature material to the
// identity point (0, 1) and a zero scalar, leaving no free witness values
// in the padding region.
func assertPaddingSignature(api frontend.API, sig eddsa.Signature, pub eddsa.PublicKey, padding frontend.Variable) {
	api.AssertIsEqual(api.Mul(padding, sig.S), 0)
	api.AssertIsEqual(api.Mul(padding, sig.R.X), 0)
	api.AssertIsEqual(api.Mul(padding, api.Sub(sig.R.Y, 1)), 0)
	api.AssertIsEqual(api.Mul(padding, pub.A.X), 0)
	api.AssertIsEqual(api.Mul(padding, api.Sub(pub.A.Y, 1)), 0)
}
