package config

import (
	"github.com/dmitrijs2005/chainprofile/internal/confx"
	"github.com/dmitrijs2005/chainprofile/internal/flagx"
	"github.com/dmitrijs2005/chainprofile/internal/timex"
)

// fileConfig is the JSON/YAML shape of Config. Durations accept "3s" or
// integer nanoseconds.
type fileConfig struct {
	NodeAddr     *string `json:"node_addr" yaml:"node_addr"`
	NetworkID    *string `json:"network_id" yaml:"network_id"`
	StoreAddress *string `json:"store_address" yaml:"store_address"`
	WalletPath   *string `json:"wallet_path" yaml:"wallet_path"`

	RequestTimeout      *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	ReceiptPollInterval *timex.Duration `json:"receipt_poll_interval" yaml:"receipt_poll_interval"`
	ConfirmationTimeout *timex.Duration `json:"confirmation_timeout" yaml:"confirmation_timeout"`
	StatusTTL           *timex.Duration `json:"status_ttl" yaml:"status_ttl"`

	AutoApprove *bool `json:"auto_approve" yaml:"auto_approve"`
	Verbose     *bool `json:"verbose" yaml:"verbose"`
}

func parseFile(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	c := &fileConfig{}
	if err := confx.Decode(path, c); err != nil {
		return err
	}

	for dst, v := range map[*string]*string{
		&config.NodeAddr:     c.NodeAddr,
		&config.NetworkID:    c.NetworkID,
		&config.StoreAddress: c.StoreAddress,
		&config.WalletPath:   c.WalletPath,
	} {
		if v != nil {
			*dst = *v
		}
	}
	if c.RequestTimeout != nil {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.ReceiptPollInterval != nil {
		config.ReceiptPollInterval = c.ReceiptPollInterval.Duration
	}
	if c.ConfirmationTimeout != nil {
		config.ConfirmationTimeout = c.ConfirmationTimeout.Duration
	}
	if c.StatusTTL != nil {
		config.StatusTTL = c.StatusTTL.Duration
	}
	if c.AutoApprove != nil {
		config.AutoApprove = *c.AutoApprove
	}
	if c.Verbose != nil {
		config.Verbose = *c.Verbose
	}
	return nil
}
