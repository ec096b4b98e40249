package config

import (
	"time"

	"github.com/dmitrijs2005/chainprofile/internal/confx"
	"github.com/dmitrijs2005/chainprofile/internal/flagx"
	"github.com/dmitrijs2005/chainprofile/internal/timex"
)

// fileConfig mirrors Config for JSON and YAML files. Pointer fields tell
// "absent" apart from zero values so a partial file only overrides what it
// names.
type fileConfig struct {
	EndpointAddrGRPC *string `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	MetricsAddr      *string `json:"metrics_addr" yaml:"metrics_addr"`
	DatabaseDSN      *string `json:"database_dsn" yaml:"database_dsn"`

	SecretKey                   *string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	ChallengeValidityDuration   *timex.Duration `json:"challenge_validity_duration" yaml:"challenge_validity_duration"`

	NetworkID      *string         `json:"network_id" yaml:"network_id"`
	StoreAddress   *string         `json:"store_address" yaml:"store_address"`
	Fee            *uint64         `json:"fee" yaml:"fee"`
	GenesisBalance *uint64         `json:"genesis_balance" yaml:"genesis_balance"`
	BlockInterval  *timex.Duration `json:"block_interval" yaml:"block_interval"`
	MaxBlockTxs    *int            `json:"max_block_txs" yaml:"max_block_txs"`

	RateLimit *float64 `json:"rate_limit" yaml:"rate_limit"`
	RateBurst *int     `json:"rate_burst" yaml:"rate_burst"`

	NATSURL     *string `json:"nats_url" yaml:"nats_url"`
	NATSSubject *string `json:"nats_subject" yaml:"nats_subject"`

	S3AccessKey    *string `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey    *string `json:"s3_secret_key" yaml:"s3_secret_key"`
	S3Bucket       *string `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region       *string `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`

	LogLevel *string `json:"log_level" yaml:"log_level"`
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

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.ChallengeValidityDuration, c.ChallengeValidityDuration)
	setString(&config.NetworkID, c.NetworkID)
	setString(&config.StoreAddress, c.StoreAddress)
	if c.Fee != nil {
		config.Fee = *c.Fee
	}
	if c.GenesisBalance != nil {
		config.GenesisBalance = *c.GenesisBalance
	}
	setDuration(&config.BlockInterval, c.BlockInterval)
	if c.MaxBlockTxs != nil {
		config.MaxBlockTxs = *c.MaxBlockTxs
	}
	if c.RateLimit != nil {
		config.RateLimit = *c.RateLimit
	}
	if c.RateBurst != nil {
		config.RateBurst = *c.RateBurst
	}
	setString(&config.NATSURL, c.NATSURL)
	setString(&config.NATSSubject, c.NATSSubject)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
