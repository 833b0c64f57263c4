// Package config holds the prover's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Prover      struct {
		KeysDir    string `yaml:"keys_dir"`
		ProofPath  string `yaml:"proof_path"`
		FixtureDir string `yaml:"fixture_dir"`
	} `yaml:"prover"`
	Aggregate struct {
		FeeAmount uint64 `yaml:"fee_amount"`
	} `yaml:"aggregate"`
	Chain struct {
		RPCURL          string `yaml:"rpc_url"`
		ContractAddress string `yaml:"contract_address"`
		SignerKey       string `yaml:"signer_key"`
		GasLimit        uint64 `yaml:"gas_limit"`
	} `yaml:"chain"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// The signer key in particular should come from the environment, not the file.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("CHAIN_RPC_URL"); v != "" {
		c.Chain.RPCURL = v
	}
	if v := os.Getenv("CHAIN_CONTRACT_ADDRESS"); v != "" {
		c.Chain.ContractAddress = v
	}
	if v := os.Getenv("CHAIN_SIGNER_KEY"); v != "" {
		c.Chain.SignerKey = v
	}
	if v := os.Getenv("KEYS_DIR"); v != "" {
		c.Prover.KeysDir = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Prover.KeysDir == "" {
		return fmt.Errorf("prover.keys_dir is required")
	}
	if c.Chain.GasLimit == 0 {
		c.Chain.GasLimit = 30_000_000
	}
	return nil
}

// ValidateChain checks the fields needed for on-chain submission. These are
// optional for purely local proving, so they get their own check.
func (c *Config) ValidateChain() error {
	if c.Chain.RPCURL == "" {
		return fmt.Errorf("chain.rpc_url is required")
	}
	if c.Chain.ContractAddress == "" {
		return fmt.Errorf("chain.contract_address is required")
	}
	if c.Chain.SignerKey == "" {
		return fmt.Errorf("chain.signer_key is required (set CHAIN_SIGNER_KEY)")
	}
	return nil
}
