package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "CHAINPROFILE_CLIENT_"

var (
	loadEnv   = godotenv.Load
	lookupEnv = os.LookupEnv
)

func parseEnv(config *Config) error {
	if err := loadEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	strs := map[string]*string{
		"NODE_ADDR":     &config.NodeAddr,
		"NETWORK_ID":    &config.NetworkID,
		"STORE_ADDRESS": &config.StoreAddress,
		"WALLET_PATH":   &config.WalletPath,
	}
	for name, dst := range strs {
		if v, ok := lookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"REQUEST_TIMEOUT":       &config.RequestTimeout,
		"RECEIPT_POLL_INTERVAL": &config.ReceiptPollInterval,
		"CONFIRMATION_TIMEOUT":  &config.ConfirmationTimeout,
		"STATUS_TTL":            &config.StatusTTL,
	}
	for name, dst := range durations {
		if v, ok := lookupEnv(envPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = d
		}
	}

	if v, ok := lookupEnv(envPrefix + "AUTO_APPROVE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sAUTO_APPROVE: %w", envPrefix, err)
		}
		config.AutoApprove = b
	}
	return nil
}
