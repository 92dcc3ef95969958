package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/hrmis/internal/buildinfo"
	"github.com/dmitrijs2005/hrmis/internal/client/cli"
	"github.com/dmitrijs2005/hrmis/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.Bootstrap(ctx, cfg, os.Stdin, os.Stdout, os.Stderr)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	app.Run(ctx)

}
