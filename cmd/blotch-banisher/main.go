package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"blotch-banisher/internal/app"
	"blotch-banisher/internal/config"
	"blotch-banisher/internal/console"
)

func main() {
	cfg, err := config.ParseFlags("blotch-banisher", os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	reporter := console.NewReporter(os.Stdout)
	reporter.Banner(app.AppVersion)

	application, err := app.New(cfg, reporter)
	if err != nil {
		reporter.LoadFailed(cfg.ImagePath, err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application failed: %v", err)
	}
}
