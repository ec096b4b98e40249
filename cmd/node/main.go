package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/chainprofile/internal/buildinfo"
	"github.com/dmitrijs2005/chainprofile/internal/node"
	"github.com/dmitrijs2005/chainprofile/internal/node/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := node.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
