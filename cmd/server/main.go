package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-replay/internal/backtest"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/server"
	"github.com/rxtech-lab/argo-replay/pkg/marketdata"
)

// serveAction loads configuration, builds the market data client, and serves
// HTTP until interrupted.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := server.LoadConfig(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if port := cmd.Int("port"); port != 0 {
		cfg.Port = int(port)
	}

	if apiKey := os.Getenv("POLYGON_API_KEY"); apiKey != "" && cfg.MarketData.PolygonAPIKey == "" {
		cfg.MarketData.PolygonAPIKey = apiKey
	}

	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	client, err := marketdata.NewClient(cfg.MarketData, log)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.NewServer(cfg, client, log).ListenAndServe(ctx)
}

// schemaAction prints the JSON schema of the backtest run configuration.
func schemaAction(_ context.Context, _ *cli.Command) error {
	cfg := backtest.EmptyConfig()

	schema, err := cfg.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "argo-replay",
		Usage: "Chart replay and strategy backtest service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML server config file",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Override the configured listen port",
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the backtest run configuration",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
