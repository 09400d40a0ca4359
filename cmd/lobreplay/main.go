// Command lobreplay replays a LOBSTER message file through the
// reconstruction engine and prints a feature table, mirroring the
// teacher's cmd/main.go (signal.NotifyContext server bootstrap) and
// cmd/client/client.go (flag-driven CLI).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lobster/internal/engine"
	"lobster/internal/export"
	"lobster/internal/feed"
	"lobster/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	messageFile := flag.String("messages", "", "path to a LOBSTER message CSV (compulsory)")
	ticker := flag.String("ticker", "TICKER", "ticker symbol")
	nlevels := flag.Int("nlevels", 10, "number of levels reported by snapshot helpers")
	tickSize := flag.Float64("tick-size", 0.01, "display tick size")
	priceScaling := flag.Float64("price-scaling", 1e-4, "raw-price to display-price scaling")
	start := flag.Float64("start", 34200, "start time, seconds from midnight")
	end := flag.Float64("end", 57600, "end time, seconds from midnight")
	interval := flag.Float64("interval", 300, "feature sampling interval, seconds")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if *messageFile == "" {
		fmt.Println("Error: -messages is compulsory.")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(ctx, *messageFile, *ticker, *nlevels, *tickSize, *priceScaling, *start, *end, *interval); err != nil {
		log.Fatal().Err(err).Msg("lobreplay failed")
	}
}

func run(ctx context.Context, messageFile, ticker string, nlevels int, tickSize, priceScaling, start, end, interval float64) error {
	f, err := os.Open(messageFile)
	if err != nil {
		return fmt.Errorf("opening message file: %w", err)
	}
	defer f.Close()

	book, err := engine.NewBook(engine.Config{
		NLevels:      nlevels,
		Ticker:       ticker,
		TickSize:     tickSize,
		PriceScaling: priceScaling,
	})
	if err != nil {
		return fmt.Errorf("constructing book: %w", err)
	}

	reader := feed.NewMessageReader(f)
	sess := session.NewFeed(ctx, book, reader, 256)
	defer sess.Stop()

	log.Info().
		Str("run_id", book.RunID.String()).
		Str("ticker", ticker).
		Str("start", feed.FormatTimestamp(start, false)).
		Str("end", feed.FormatTimestamp(end, false)).
		Msg("replaying message file")

	reg := export.DefaultRegistry()
	if err := export.PrintFeaturesToCSV(sess, os.Stdout, start, end, interval, reg); err != nil {
		return fmt.Errorf("printing features: %w", err)
	}
	return nil
}
