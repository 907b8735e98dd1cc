package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/m3rciful/codemasterbot/internal/bootstrap"
	"github.com/m3rciful/codemasterbot/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("bot: %v", err)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	configPath := pflag.StringP("config", "c", "", "path to the YAML config file")
	importPath := pflag.String("import", "", "CSV file with questions to import on startup")
	pflag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config.yaml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := bootstrap.Run(ctx, cfg, bootstrap.Options{ImportPath: *importPath})
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
