// Command prove builds a signed demo batch, prechecks it, proves the
// aggregation circuit, and writes the proof and public outputs to disk.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/rs/zerolog"

	"github.com/berendjan/pyth-zkproof/circuits/aggregation"
	"github.com/berendjan/pyth-zkproof/config"
	"github.com/berendjan/pyth-zkproof/pkg/precheck"
	"github.com/berendjan/pyth-zkproof/pkg/quote"
	"github.com/berendjan/pyth-zkproof/pkg/setup"
)

// PublicOutputs is the JSON shape written next to the proof. The field order
// matches the verifier contract's public input order.
type PublicOutputs struct {
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
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg)

	batch, err := demoBatch()
	if err != nil {
		log.Fatal().Err(err).Msg("build demo batch")
	}

	if err := precheck.Batch(batch); err != nil {
		log.Fatal().Err(err).Msg("batch failed precheck")
	}
	log.Info().Int("quotes", len(batch)).Msg("batch passed precheck")

	ccs, err := setup.CompileCircuit(&aggregation.Circuit{})
	if err != nil {
		log.Fatal().Err(err).Msg("compile circuit")
	}
	log.Info().Int("constraints", ccs.GetNbConstraints()).Msg("circuit compiled")

	pk, vk, err := setup.LoadKeys(cfg.Prover.KeysDir, "aggregation")
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Prover.KeysDir).Msg("load keys")
	}

	result, err := aggregation.PrepareWitness(batch, cfg.Aggregate.FeeAmount)
	if err != nil {
		log.Fatal().Err(err).Msg("prepare witness")
	}
	log.Info().
		Uint64("p25", result.P25).
		Uint64("p50", result.P50).
		Uint64("p75", result.P75).
		Uint64("confidence", result.Confidence).
		Msg("aggregate computed")

	witness, err := frontend.NewWitness(&result.Assignment, ecc.BN254.ScalarField())
	if err != nil {
		log.Fatal().Err(err).Msg("create witness")
	}
	publicWitness, err := witness.Public()
	if err != nil {
		log.Fatal().Err(err).Msg("extract public witness")
	}

	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		log.Fatal().Err(err).Msg("prove")
	}
	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		log.Fatal().Err(err).Msg("verify")
	}
	log.Info().Msg("proof verified locally")

	proofPath := cfg.Prover.ProofPath
	if err := os.MkdirAll(filepath.Dir(proofPath), 0o755); err != nil {
		log.Fatal().Err(err).Msg("create output dir")
	}
	f, err := os.Create(proofPath)
	if err != nil {
		log.Fatal().Err(err).Msg("create proof file")
	}
	if _, err := proof.WriteTo(f); err != nil {
		f.Close()
		log.Fatal().Err(err).Msg("write proof")
	}
	f.Close()

	pub := PublicOutputs{
		P25:        result.P25,
		P50:        result.P50,
		P75:        result.P75,
		Confidence: result.Confidence,
		Fee:        result.Fee,
	}
	pubJSON, err := json.MarshalIndent(pub, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("marshal public outputs")
	}
	publicPath := filepath.Join(filepath.Dir(proofPath), "public.json")
	if err := os.WriteFile(publicPath, pubJSON, 0o644); err != nil {
		log.Fatal().Err(err).Msg("write public outputs")
	}

	log.Info().Str("proof", proofPath).Str("public", publicPath).Msg("done")
}

// demoBatch signs three quotes with freshly generated publisher keys. A real
// deployment would receive signed quotes over the wire instead.
func demoBatch() ([]*quote.SignedQuote, error) {
	quotes := []quote.Quote{
		{Price: 100, Conf: 5, Timestamp: 1000, ObservedOnline: true},
		{Price: 102, Conf: 3, Timestamp: 1000, ObservedOnline: true},
		{Price: 98, Conf: 4, Timestamp: 998, ObservedOnline: true},
	}

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
	return batch, nil
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
