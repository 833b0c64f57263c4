// Package quote holds the native-side model of a publisher price quote and
// the off-circuit signing contract that matches the in-circuit verifier.
//
// Publishers sign the 128-bit concatenation encode64(price) || encode64(conf)
// with EdDSA on the BN254 twisted Edwards curve, using MiMC as the signature
// hash. This deviates from standard EdDSA on purpose: the circuit verifies
// the signature with an algebraic hash, so a publisher signing with a
// SHA-512 based implementation will never verify.
package quote

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	bn254eddsa "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark-crypto/signature"
	"github.com/consensys/gnark-crypto/signature/eddsa"
)

// Quote is a single publisher observation. All values are unsigned integers
// (fixed-point where applicable) that must fit in 64 bits.
type Quote struct {
	Price          uint64
	Conf           uint64
	Timestamp      uint64
	ObservedOnline bool
}

// SignedQuote binds a Quote to its publisher via an EdDSA signature over
// Message(price, conf).
type SignedQuote struct {
	Quote     Quote
	PublicKey []byte // compressed twisted Edwards point, 32 bytes
	Signature []byte // compressed R || S, 64 bytes
}

// Sentinel returns the field representation of -1 that marks padding slots
// in every fixed-capacity witness array. Witness generators must use this
// exact element (p - 1), never a signed literal.
func Sentinel() *big.Int {
	return new(big.Int).Sub(fr.Modulus(), big.NewInt(1))
}

// Message builds the signed payload: encode64(price) || encode64(conf) with
// the price in the low 64 bits, i.e. price + conf*2^64 as a field element.
func Message(price, conf uint64) *big.Int {
	m := new(big.Int).Lsh(new(big.Int).SetUint64(conf), 64)
	return m.Or(m, new(big.Int).SetUint64(price))
}

// GenerateSigner creates a publisher key pair on the BN254 twisted Edwards
// curve.
func GenerateSigner() (signature.Signer, error) {
	return eddsa.New(tedwards.BN254, rand.Reader)
}

// Sign signs a quote's (price, conf) pair with the publisher's key.
func Sign(q Quote, signer signature.Signer) (*SignedQuote, error) {
	var m fr.Element
	m.SetBigInt(Message(q.Price, q.Conf))
	msg := m.Bytes()

	sig, err := signer.Sign(msg[:], mimc.NewMiMC())
	if err != nil {
		return nil, fmt.Errorf("sign quote: %w", err)
	}

	return &SignedQuote{
		Quote:     q,
		PublicKey: signer.Public().Bytes(),
		Signature: sig,
	}, nil
}

// Verify checks a signed quote natively with the same MiMC-based scheme the
// circuit enforces.
func Verify(sq *SignedQuote) (bool, error) {
	var pub bn254eddsa.PublicKey
	if _, err := pub.SetBytes(sq.PublicKey); err != nil {
		return false, fmt.Errorf("decode public key: %w", err)
	}

	var m fr.Element
	m.SetBigInt(Message(sq.Quote.Price, sq.Quote.Conf))
	msg := m.Bytes()

	ok, err := pub.Verify(sq.Signature, msg[:], mimc.NewMiMC())
	if err != nil {
		return false, fmt.Errorf("verify quote signature: %w", err)
	}
	return ok, nil
}
