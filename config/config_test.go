package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/berendjan/pyth-zkproof/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "prover.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const validConfig = `
environment: test
prover:
  keys_dir: keys
  proof_path: out/proof.bin
aggregate:
  fee_amount: 7
chain:
  rpc_url: http://127.0.0.1:8545
  contract_address: "0x76Ea767C8e94Cb772e4D91308c503B4269f41b2C"
  gas_limit: 1000000
log:
  level: debug
`

func TestLoad(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	require.Equal(t, "test", cfg.Environment)
	require.Equal(t, "keys", cfg.Prover.KeysDir)
	require.Equal(t, uint64(7), cfg.Aggregate.FeeAmount)
	require.Equal(t, uint64(1000000), cfg.Chain.GasLimit)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsMissingEnvironment(t *testing.T) {
	_, err := config.Load(writeConfig(t, `
prover:
  keys_dir: keys
`))
	require.ErrorContains(t, err, "environment is required")
}

func TestLoadRejectsMissingKeysDir(t *testing.T) {
	_, err := config.Load(writeConfig(t, `
environment: test
`))
	require.ErrorContains(t, err, "prover.keys_dir is required")
}

func TestGasLimitDefault(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
environment: test
prover:
  keys_dir: keys
`))
	require.NoError(t, err)
	require.Equal(t, uint64(30_000_000), cfg.Chain.GasLimit)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("CHAIN_SIGNER_KEY", "0xdeadbeef")
	t.Setenv("CHAIN_RPC_URL", "http://geth:8545")

	cfg, err := config.LoadWithEnv(writeConfig(t, validConfig))
	require.NoError(t, err)
	require.Equal(t, "0xdeadbeef", cfg.Chain.SignerKey)
	require.Equal(t, "http://geth:8545", cfg.Chain.RPCURL)
}

func TestValidateChain(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	// signer key is only needed for submission
	require.ErrorContains(t, cfg.ValidateChain(), "chain.signer_key")

	cfg.Chain.SignerKey = "0xdeadbeef"
	require.NoError(t, cfg.ValidateChain())
}
