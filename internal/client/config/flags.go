package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/chainprofile/internal/flagx"
)

// parseFlags overlays command-line flags:
//
//	-a string   node gRPC address
//	-n string   network id
//	-store      record store address
//	-w string   wallet file
//	-y          approve connection and signing prompts automatically
//	-v          verbose logging
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-n", "-store", "-w", "-y", "-v"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.NodeAddr, "a", config.NodeAddr, "node address")
	fs.StringVar(&config.NetworkID, "n", config.NetworkID, "network id")
	fs.StringVar(&config.StoreAddress, "store", config.StoreAddress, "record store address")
	fs.StringVar(&config.WalletPath, "w", config.WalletPath, "wallet file")
	fs.BoolVar(&config.AutoApprove, "y", config.AutoApprove, "auto-approve prompts")
	fs.BoolVar(&config.Verbose, "v", config.Verbose, "verbose logging")

	return fs.Parse(args)
}
