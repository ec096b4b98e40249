package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/chainprofile/internal/flagx"
)

// parseFlags overlays command-line flags:
//
//	-a string     gRPC bind address (e.g. ":50051")
//	-m string     metrics/health HTTP bind address
//	-d string     PostgreSQL DSN; empty selects in-memory storage
//	-s string     JWT HMAC secret key
//	-t duration   access token validity
//	-n string     network id
//	-store string record store address
//	-fee uint     transaction fee
//	-genesis uint balance credited to new accounts
//	-i duration   block interval
//	-nats string  NATS URL; empty disables event publishing
//	-b string     S3 bucket; empty disables block archiving
//	-e string     S3 base endpoint
//	-l string     log level (debug, info, warn, error)
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{
		"-a", "-m", "-d", "-s", "-t", "-n", "-store", "-fee", "-genesis", "-i", "-nats", "-b", "-e", "-l",
	})

	fs := flag.NewFlagSet("node", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC bind address")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "metrics bind address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.AccessTokenValidityDuration, "t", config.AccessTokenValidityDuration, "access token validity")
	fs.StringVar(&config.NetworkID, "n", config.NetworkID, "network id")
	fs.StringVar(&config.StoreAddress, "store", config.StoreAddress, "record store address")
	fs.Uint64Var(&config.Fee, "fee", config.Fee, "transaction fee")
	fs.Uint64Var(&config.GenesisBalance, "genesis", config.GenesisBalance, "genesis balance")
	fs.DurationVar(&config.BlockInterval, "i", config.BlockInterval, "block interval")
	fs.StringVar(&config.NATSURL, "nats", config.NATSURL, "NATS URL")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(args)
}
