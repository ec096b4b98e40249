// Package config builds the node configuration from defaults, an optional
// config file, the environment and command-line flags, in that order.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/logging"
)

// DefaultStoreAddress is the record store address used by the dev network.
const DefaultStoreAddress = "0x5fbdb2315678afecb367f032d93f642f64180aa3"

// Config holds runtime settings for the ledger node.
type Config struct {
	EndpointAddrGRPC string
	MetricsAddr      string
	DatabaseDSN      string

	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	ChallengeValidityDuration   time.Duration

	NetworkID      string
	StoreAddress   string
	Fee            uint64
	GenesisBalance uint64
	BlockInterval  time.Duration
	MaxBlockTxs    int

	RateLimit float64
	RateBurst int

	NATSURL     string
	NATSSubject string

	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string

	LogLevel string
}

// LoadDefaults populates Config with development defaults. The secret key
// must be overridden outside of local setups.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.MetricsAddr = ":9102"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.ChallengeValidityDuration = 2 * time.Minute
	c.NetworkID = "chainprofile-dev"
	c.StoreAddress = DefaultStoreAddress
	c.Fee = 21
	c.GenesisBalance = 1_000_000
	c.BlockInterval = 2 * time.Second
	c.MaxBlockTxs = 256
	c.RateLimit = 2
	c.RateBurst = 5
	c.NATSURL = ""
	c.NATSSubject = "chainprofile.profiles.updated"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.LogLevel = "info"
}

// Validate rejects settings the node cannot start with.
func (c *Config) Validate() error {
	if _, err := chain.ParseAddress(c.StoreAddress); err != nil {
		return fmt.Errorf("store address: %w", err)
	}
	if c.NetworkID == "" {
		return fmt.Errorf("network id is empty")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key is empty")
	}
	if c.BlockInterval <= 0 {
		return fmt.Errorf("block interval must be positive, got %s", c.BlockInterval)
	}
	if c.MaxBlockTxs <= 0 {
		return fmt.Errorf("max block txs must be positive, got %d", c.MaxBlockTxs)
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return fmt.Errorf("rate limit and burst must be positive")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Store returns the parsed store address. Validate must have succeeded.
func (c *Config) Store() chain.Address {
	a, _ := chain.ParseAddress(c.StoreAddress)
	return a
}

// LoadConfig applies defaults, then the config file named by -c/-config, then
// CHAINPROFILE_* environment variables (a .env file is read first when
// present), then flags.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
