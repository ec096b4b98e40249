// Package config builds the profile client configuration from defaults, an
// optional config file, the environment and command-line flags, in that
// order.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
)

// DefaultStoreAddress is the record store address of the dev network.
const DefaultStoreAddress = "0x5fbdb2315678afecb367f032d93f642f64180aa3"

// Config holds runtime settings for the profile client.
//
// NetworkID and StoreAddress pin the client to one deployment: a node that
// reports another network is treated as a missing signing environment.
type Config struct {
	NodeAddr     string
	NetworkID    string
	StoreAddress string
	WalletPath   string

	RequestTimeout      time.Duration
	ReceiptPollInterval time.Duration
	ConfirmationTimeout time.Duration
	StatusTTL           time.Duration

	AutoApprove bool
	Verbose     bool
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.NodeAddr = "127.0.0.1:50051"
	c.NetworkID = "chainprofile-dev"
	c.StoreAddress = DefaultStoreAddress
	c.WalletPath = "wallet.db"
	c.RequestTimeout = 10 * time.Second
	c.ReceiptPollInterval = 500 * time.Millisecond
	c.ConfirmationTimeout = 60 * time.Second
	c.StatusTTL = 5 * time.Second
	c.AutoApprove = false
	c.Verbose = false
}

func (c *Config) Validate() error {
	if c.NodeAddr == "" {
		return fmt.Errorf("node address is empty")
	}
	if c.NetworkID == "" {
		return fmt.Errorf("network id is empty")
	}
	if _, err := chain.ParseAddress(c.StoreAddress); err != nil {
		return fmt.Errorf("store address: %w", err)
	}
	if c.WalletPath == "" {
		return fmt.Errorf("wallet path is empty")
	}
	for name, d := range map[string]time.Duration{
		"request timeout":       c.RequestTimeout,
		"receipt poll interval": c.ReceiptPollInterval,
		"confirmation timeout":  c.ConfirmationTimeout,
		"status ttl":            c.StatusTTL,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}

// Store returns the parsed store address. Validate must have succeeded.
func (c *Config) Store() chain.Address {
	a, _ := chain.ParseAddress(c.StoreAddress)
	return a
}

// LoadConfig applies defaults, then the config file named by -c/-config, then
// CHAINPROFILE_CLIENT_* environment variables, then flags.
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
