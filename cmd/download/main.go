package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/marketdata"
)

// downloadAction fetches a symbol's history and writes it into the local
// Parquet cache with a progress bar.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	symbol := cmd.String("symbol")
	timeframe := types.Timeframe(cmd.String("timeframe"))
	start := cmd.Timestamp("start")
	end := cmd.Timestamp("end")

	if !timeframe.Valid() {
		return fmt.Errorf("invalid timeframe: %s", timeframe)
	}

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	client, err := marketdata.NewClient(marketdata.ClientConfig{
		Provider:      marketdata.ProviderType(cmd.String("provider")),
		PolygonAPIKey: os.Getenv("POLYGON_API_KEY"),
		CachePath:     cmd.String("data"),
	}, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	var bar *progressbar.ProgressBar

	onProgress := func(current, total float64, message string) {
		if bar == nil {
			bar = progressbar.NewOptions(int(total),
				progressbar.OptionSetDescription(message),
				progressbar.OptionShowCount(),
			)
		}

		_ = bar.Set(int(current))
	}

	log.Printf("Downloading %s (%s) from %s to %s...",
		symbol, timeframe, start.Format("2006-01-02"), end.Format("2006-01-02"))

	path, err := client.Download(ctx, symbol, timeframe, start, end, onProgress)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	if bar != nil {
		_ = bar.Finish()
	}

	log.Printf("Wrote %s", path)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "download",
		Usage: "Download historical market data into the local cache",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"t"},
				Usage:    "Ticker symbol",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "timeframe",
				Aliases: []string{"i"},
				Usage:   "Bar timeframe (1m, 5m, 1h, 1D)",
				Value:   string(types.Timeframe1Day),
			},
			&cli.TimestampFlag{
				Name:     "start",
				Aliases:  []string{"s"},
				Usage:    "Start date in `YYYY-MM-DD` format",
				Required: true,
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider (%s, %s, %s)", marketdata.ProviderYahoo, marketdata.ProviderBinance, marketdata.ProviderPolygon),
				Value:   string(marketdata.ProviderYahoo),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the cache output directory",
				Value:   "data",
			},
		},
		Action: downloadAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
