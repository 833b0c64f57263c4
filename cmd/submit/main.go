// Command submit reads a previously generated proof and its public outputs
// and submits them to the on-chain verifier contract.
package main

import (
	"context"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/rs/zerolog"

	"github.com/berendjan/pyth-zkproof/config"
	"github.com/berendjan/pyth-zkproof/pkg/onchain"
)

type publicOutputs struct {
	P25        uint64 `json:"p25"`
	P50        uint64 `json:"p50"`
	P75        uint64 `json:"p75"`
	Confidence uint64 `json:"confidence"`
	Fee        uint64 `json:"fee"`
}

func main() {
	cfgPath := "configs/prover.example.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.LoadWithEnv(cfgPath)
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("load config")
	}

	log := newLogger(cfg)

	if err := cfg.ValidateChain(); err != nil {
		log.Fatal().Err(err).Msg("chain config incomplete")
	}

	proof := groth16.NewProof(ecc.BN254)
	f, err := os.Open(cfg.Prover.ProofPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open proof")
	}
	if _, err := proof.ReadFrom(f); err != nil {
		f.Close()
		log.Fatal().Err(err).Msg("read proof")
	}
	f.Close()

	publicPath := filepath.Join(filepath.Dir(cfg.Prover.ProofPath), "public.json")
	pubJSON, err := os.ReadFile(publicPath)
	if err != nil {
		log.Fatal().Err(err).Msg("read public outputs")
	}
	var pub publicOutputs
	if err := json.Unmarshal(pubJSON, &pub); err != nil {
		log.Fatal().Err(err).Msg("parse public outputs")
	}

	publics := [onchain.PublicInputCount]*big.Int{
		new(big.Int).SetUint64(pub.P25),
		new(big.Int).SetUint64(pub.P50),
		new(big.Int).SetUint64(pub.P75),
		new(big.Int).SetUint64(pub.Confidence),
		new(big.Int).SetUint64(pub.Fee),
	}

	cd, err := onchain.PackProof(proof, publics)
	if err != nil {
		log.Fatal().Err(err).Msg("pack proof")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	submitter, err := onchain.NewSubmitter(ctx, cfg.Chain.RPCURL, cfg.Chain.ContractAddress, cfg.Chain.SignerKey, cfg.Chain.GasLimit, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create submitter")
	}
	defer submitter.Close()

	txHash, err := submitter.Submit(ctx, cd)
	if err != nil {
		log.Fatal().Err(err).Msg("submit proof")
	}

	log.Info().Str("tx", txHash.Hex()).Msg("proof submitted")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if cfg.Log.Pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}
