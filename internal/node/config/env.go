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

const envPrefix = "CHAINPROFILE_"

var (
	loadEnv   = godotenv.Load
	lookupEnv = os.LookupEnv
)

// parseEnv overlays CHAINPROFILE_* variables. A missing .env file is fine;
// variables already set in the process environment win over the file.
func parseEnv(config *Config) error {
	if err := loadEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	strs := map[string]*string{
		"GRPC_ADDR":        &config.EndpointAddrGRPC,
		"METRICS_ADDR":     &config.MetricsAddr,
		"DATABASE_DSN":     &config.DatabaseDSN,
		"SECRET_KEY":       &config.SecretKey,
		"NETWORK_ID":       &config.NetworkID,
		"STORE_ADDRESS":    &config.StoreAddress,
		"NATS_URL":         &config.NATSURL,
		"NATS_SUBJECT":     &config.NATSSubject,
		"S3_ACCESS_KEY":    &config.S3AccessKey,
		"S3_SECRET_KEY":    &config.S3SecretKey,
		"S3_BUCKET":        &config.S3Bucket,
		"S3_REGION":        &config.S3Region,
		"S3_BASE_ENDPOINT": &config.S3BaseEndpoint,
		"LOG_LEVEL":        &config.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := lookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"ACCESS_TOKEN_TTL": &config.AccessTokenValidityDuration,
		"CHALLENGE_TTL":    &config.ChallengeValidityDuration,
		"BLOCK_INTERVAL":   &config.BlockInterval,
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

	uints := map[string]*uint64{
		"FEE":             &config.Fee,
		"GENESIS_BALANCE": &config.GenesisBalance,
	}
	for name, dst := range uints {
		if v, ok := lookupEnv(envPrefix + name); ok {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = n
		}
	}

	ints := map[string]*int{
		"MAX_BLOCK_TXS": &config.MaxBlockTxs,
		"RATE_BURST":    &config.RateBurst,
	}
	for name, dst := range ints {
		if v, ok := lookupEnv(envPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = n
		}
	}

	if v, ok := lookupEnv(envPrefix + "RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT: %w", envPrefix, err)
		}
		config.RateLimit = f
	}
	return nil
}
