// Package onchain packs a Groth16 proof into verifier-contract calldata and
// submits it with a plain submitProof transaction.
package onchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
)

// submitProofABI matches the verifier contract's entry point:
// submitProof(uint256[2] a, uint256[2][2] b, uint256[2] c, uint256[5] input).
const submitProofABI = `[{"name":"submitProof","type":"function","stateMutability":"nonpayable","inputs":[
	{"name":"a","type":"uint256[2]"},
	{"name":"b","type":"uint256[2][2]"},
	{"name":"c","type":"uint256[2]"},
	{"name":"input","type":"uint256[5]"}
]}]`

// PublicInputCount is the number of public signals the verifier expects:
// p25, p50, p75, confidence, fee.
const PublicInputCount = 5

// Calldata is a Groth16 proof in the shape the verifier contract takes it.
// B uses the Solidity Fp2 ordering (A1 before A0).
type Calldata struct {
	A     [2]*big.Int
	B     [2][2]*big.Int
	C     [2]*big.Int
	Input [PublicInputCount]*big.Int
}

// PackProof converts a BN254 Groth16 proof plus the public aggregate values
// into contract calldata.
func PackProof(proof groth16.Proof, publics [PublicInputCount]*big.Int) (*Calldata, error) {
	bn254Proof, ok := proof.(*groth16bn254.Proof)
	if !ok {
		return nil, fmt.Errorf("unexpected proof type %T, want BN254 Groth16", proof)
	}

	var cd Calldata
	cd.A[0] = new(big.Int)
	cd.A[1] = new(big.Int)
	bn254Proof.Ar.X.BigInt(cd.A[0])
	bn254Proof.Ar.Y.BigInt(cd.A[1])

	for i := range cd.B {
		cd.B[i][0] = new(big.Int)
		cd.B[i][1] = new(big.Int)
	}
	bn254Proof.Bs.X.A1.BigInt(cd.B[0][0])
	bn254Proof.Bs.X.A0.BigInt(cd.B[0][1])
	bn254Proof.Bs.Y.A1.BigInt(cd.B[1][0])
	bn254Proof.Bs.Y.A0.BigInt(cd.B[1][1])

	cd.C[0] = new(big.Int)
	cd.C[1] = new(big.Int)
	bn254Proof.Krs.X.BigInt(cd.C[0])
	bn254Proof.Krs.Y.BigInt(cd.C[1])

	for i, p := range publics {
		if p == nil {
			return nil, fmt.Errorf("public input %d is nil", i)
		}
		cd.Input[i] = new(big.Int).Set(p)
	}

	return &cd, nil
}

// Submitter sends packed proofs to the verifier contract.
type Submitter struct {
	client   *ethclient.Client
	contract common.Address
	key      *ecdsa.PrivateKey
	chainID  *big.Int
	gasLimit uint64
	abi      abi.ABI
	log      zerolog.Logger
}

// NewSubmitter dials the RPC endpoint and prepares a submitter for the given
// verifier contract. privateKeyHex is the transaction signer key, with or
// without a 0x prefix.
func NewSubmitter(ctx context.Context, rpcURL, contractAddr, privateKeyHex string, gasLimit uint64, log zerolog.Logger) (*Submitter, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc %s: %w", rpcURL, err)
	}

	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse signer key: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch chain id: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(submitProofABI))
	if err != nil {
		return nil, fmt.Errorf("parse verifier abi: %w", err)
	}

	return &Submitter{
		client:   client,
		contract: common.HexToAddress(contractAddr),
		key:      key,
		chainID:  chainID,
		gasLimit: gasLimit,
		abi:      parsed,
		log:      log,
	}, nil
}

// Close releases the underlying RPC connection.
func (s *Submitter) Close() {
	s.client.Close()
}

// Submit sends submitProof(a, b, c, input) and returns the transaction hash.
// It does not wait for the transaction to be mined.
func (s *Submitter) Submit(ctx context.Context, cd *Calldata) (common.Hash, error) {
	data, err := s.abi.Pack("submitProof", cd.A, cd.B, cd.C, cd.Input)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack calldata: %w", err)
	}

	from := ethcrypto.PubkeyToAddress(s.key.PublicKey)
	nonce, err := s.client.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("fetch nonce: %w", err)
	}

	gasPrice, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("suggest gas price: %w", err)
	}

	tx := types.NewTransaction(nonce, s.contract, big.NewInt(0), s.gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.NewEIP155Signer(s.chainID), s.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction: %w", err)
	}

	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}

	s.log.Info().
		Str("tx", signed.Hash().Hex()).
		Str("contract", s.contract.Hex()).
		Uint64("nonce", nonce).
		Msg("submitted aggregate proof")

	return signed.Hash(), nil
}
