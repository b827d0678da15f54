package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/helpkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/helpkeeper/internal/cli"
	"github.com/dmitrijs2005/helpkeeper/internal/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
