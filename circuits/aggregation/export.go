package aggregation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/berendjan/pyth-zkproof/pkg/quote"
	"github.com/berendjan/pyth-zkproof/pkg/setup"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/frontend"
)

// ProofFixture holds all values needed for Solidity tests.
type ProofFixture struct {
	SolidityProof [8]string `json:"solidity_proof"`
	P25           string    `json:"p25"`
	P50           string    `json:"p50"`
	P75           string    `json:"p75"`
	Confidence    string    `json:"confidence"`
	Fee           string    `json:"fee"`
}

// ExportProofFixture generates a proof fixture for Solidity tests.
// keysDir is the directory containing the proving and verifying keys.
func ExportProofFixture(keysDir string) ([]byte, error) {
	// 1. Compile the circuit
	fmt.Println("Compiling circuit...")
	ccs, err := setup.CompileCircuit(&Circuit{})
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}

	// 2. Load proving and verifying keys
	fmt.Println("Loading keys...")
	pk, vk, err := setup.LoadKeys(keysDir, "aggregation")
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}

	// 3. Fixed quote batch: three publishers around 100 with a spread.
	//    Key material is fresh per run; the public outputs depend only on
	//    the quoted values, so the Solidity constants stay stable.
	quotes := []quote.Quote{
		{Price: 100, Conf: 5, Timestamp: 1000, ObservedOnline: true},
		{Price: 102, Conf: 3, Timestamp: 1000, ObservedOnline: true},
		{Price: 98, Conf: 4, Timestamp: 998, ObservedOnline: true},
	}
	const fee = 7

	batch := make([]*quote.SignedQuote, len(quotes))
	for i, q := range quotes {
		signer, err := quote.GenerateSigner()
		if err != nil {
			return nil, fmt.Errorf("generate signer %d: %w", i, err)
		}
		batch[i], err = quote.Sign(q, signer)
		if err != nil {
			return nil, fmt.Errorf("sign quote %d: %w", i, err)
		}
	}

	// 4. Prepare the full witness
	result, err := PrepareWitness(batch, fee)
	if err != nil {
		return nil, fmt.Errorf("prepare witness: %w", err)
	}

	fmt.Printf("Derived values: %v\n", result.Derived)
	fmt.Printf("p25=%d p50=%d p75=%d confidence=%d fee=%d\n",
		result.P25, result.P50, result.P75, result.Confidence, result.Fee)

	// 5. Create witness and generate proof
	witness, err := frontend.NewWitness(&result.Assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("create witness: %w", err)
	}

	publicWitness, err := witness.Public()
	if err != nil {
		return nil, fmt.Errorf("extract public witness: %w", err)
	}

	fmt.Println("Generating proof...")
	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		return nil, fmt.Errorf("prove: %w", err)
	}

	// 6. Verify proof in Go
	err = groth16.Verify(proof, vk, publicWitness)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	fmt.Println("Proof verified successfully in Go!")

	// 7. Extract proof points for Solidity
	bn254Proof := proof.(*groth16bn254.Proof)

	aX := new(big.Int)
	aY := new(big.Int)
	bn254Proof.Ar.X.BigInt(aX)
	bn254Proof.Ar.Y.BigInt(aY)

	bX0 := new(big.Int)
	bX1 := new(big.Int)
	bY0 := new(big.Int)
	bY1 := new(big.Int)
	bn254Proof.Bs.X.A0.BigInt(bX0)
	bn254Proof.Bs.X.A1.BigInt(bX1)
	bn254Proof.Bs.Y.A0.BigInt(bY0)
	bn254Proof.Bs.Y.A1.BigInt(bY1)

	cX := new(big.Int)
	cY := new(big.Int)
	bn254Proof.Krs.X.BigInt(cX)
	bn254Proof.Krs.Y.BigInt(cY)

	// Solidity format: [A.x, A.y, B.x1, B.x0, B.y1, B.y0, C.x, C.y]
	solidityProof := [8]*big.Int{aX, aY, bX1, bX0, bY1, bY0, cX, cY}

	fixture := ProofFixture{
		P25:        fmt.Sprintf("%d", result.P25),
		P50:        fmt.Sprintf("%d", result.P50),
		P75:        fmt.Sprintf("%d", result.P75),
		Confidence: fmt.Sprintf("%d", result.Confidence),
		Fee:        fmt.Sprintf("%d", result.Fee),
	}
	for i := 0; i < 8; i++ {
		fixture.SolidityProof[i] = fmt.Sprintf("0x%064x", solidityProof[i])
	}

	jsonOut, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal fixture: %w", err)
	}

	// Print diagnostic info
	fmt.Println("\n=== PROOF FIXTURE (JSON) ===")
	fmt.Println(string(jsonOut))

	fmt.Println("\n=== SOLIDITY CONSTANTS ===")
	fmt.Printf("    // Public inputs\n")
	fmt.Printf("    uint256 constant ZK_P25 = %s;\n", fixture.P25)
	fmt.Printf("    uint256 constant ZK_P50 = %s;\n", fixture.P50)
	fmt.Printf("    uint256 constant ZK_P75 = %s;\n", fixture.P75)
	fmt.Printf("    uint256 constant ZK_CONFIDENCE = %s;\n", fixture.Confidence)
	fmt.Printf("    uint256 constant ZK_FEE = %s;\n", fixture.Fee)
	fmt.Println()
	fmt.Printf("    // Proof (uint256[8])\n")
	for i := 0; i < 8; i++ {
		fmt.Printf("    uint256 constant ZK_PROOF_%d = %s;\n", i, fixture.SolidityProof[i])
	}

	fmt.Println("\n=== HELPER ===")
	fmt.Println("    function _zkProof() internal pure returns (uint256[8] memory proof) {")
	for i := 0; i < 8; i++ {
		fmt.Printf("        proof[%d] = ZK_PROOF_%d;\n", i, i)
	}
	fmt.Println("    }")

	// Public witness info
	fmt.Println("\n=== PUBLIC WITNESS ORDER ===")
	fmt.Println("In gnark circuit (= Solidity order): [p25, p50, p75, confidence, fee]")
	var pubWitBuf bytes.Buffer
	_, err = publicWitness.WriteTo(&pubWitBuf)
	if err != nil {
		return nil, fmt.Errorf("write public witness: %w", err)
	}
	fmt.Printf("Public witness size: %d bytes\n", pubWitBuf.Len())

	fmt.Println("\ngnark public input order (from circuit struct tags):")
	fmt.Println("  [0] p25")
	fmt.Println("  [1] p50")
	fmt.Println("  [2] p75")
	fmt.Println("  [3] confidence")
	fmt.Println("  [4] fee")
	fmt.Println("\nMake sure the verifier contract's publicInputs array matches this order!")

	return jsonOut, nil
}
