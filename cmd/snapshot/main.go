// Command snapshot runs one load cycle against EONET and prints the merged
// wildfire list, filtered the same way the API filters it.
//
// Usage:
//
//	go run ./cmd/snapshot -status open -from 2024-07-01 -q park -detail-limit 5 -out fires.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/wildfire-tracker/internal/adapter/eonet"
	"github.com/couchcryptid/wildfire-tracker/internal/cache"
	"github.com/couchcryptid/wildfire-tracker/internal/config"
	"github.com/couchcryptid/wildfire-tracker/internal/domain"
	"github.com/couchcryptid/wildfire-tracker/internal/loader"
	"github.com/couchcryptid/wildfire-tracker/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	status := flag.String("status", "", "filter by status: open, closed or all")
	from := flag.String("from", "", "keep events last observed on or after this day (YYYY-MM-DD)")
	to := flag.String("to", "", "keep events last observed on or before this day (YYYY-MM-DD)")
	search := flag.String("q", "", "case-insensitive title search")
	limit := flag.Int("limit", 0, "list limit (default EVENT_LIMIT)")
	detailLimit := flag.Int("detail-limit", -1, "max geometry backfills (default DETAIL_FETCH_LIMIT)")
	out := flag.String("out", "", "output path (default stdout)")
	force := flag.Bool("force", true, "treat the load as a user-initiated refresh")
	flag.Parse()

	filter, err := buildFilter(*status, *from, *to, *search)
	if err != nil {
		flag.Usage()
		return err
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *limit > 0 {
		cfg.EventLimit = *limit
	}
	if *detailLimit >= 0 {
		cfg.DetailFetchLimit = *detailLimit
	}
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).With("service", "wildfire-snapshot")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := cache.OpenBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open cache backend: %w", err)
	}
	defer backend.Close() //nolint:errcheck // best-effort on exit

	events, err := load(ctx, cfg, backend, logger, *force)
	if err != nil {
		return err
	}

	w := io.Writer(os.Stdout)
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create %s: %w", *out, err)
		}
		defer f.Close() //nolint:errcheck // closed after encode
		w = f
	}
	return writeEvents(w, filter.Apply(events))
}

func load(ctx context.Context, cfg *config.Config, backend cache.Backend, logger *slog.Logger, force bool) ([]domain.Event, error) {
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	client := eonet.NewClient(cfg.EONETBaseURL, cfg.EONETCategory, cfg.EONETTimeout, logger, metrics)
	store := cache.NewStore(backend, clock, logger, metrics)
	l := loader.New(client, store, loader.OptionsFromConfig(cfg), logger, metrics, loader.WithClock(clock))

	start := time.Now()
	res := l.Load(ctx, force)
	if res.Err != nil {
		if errors.Is(res.Err, context.Canceled) {
			return nil, errors.New("interrupted")
		}
		return nil, fmt.Errorf("load events: %w", res.Err)
	}
	logger.Info("snapshot loaded", "count", len(res.Data), "duration", time.Since(start))
	return res.Data, nil
}

func buildFilter(status, from, to, search string) (domain.Filter, error) {
	var f domain.Filter
	var err error

	if f.Status, err = domain.ParseStatus(status); err != nil {
		return f, err
	}
	if from != "" {
		if f.From, err = domain.ParseDay(from); err != nil {
			return f, fmt.Errorf("-from: %w", err)
		}
	}
	if to != "" {
		if f.To, err = domain.ParseDay(to); err != nil {
			return f, fmt.Errorf("-to: %w", err)
		}
	}
	f.Search = search
	return f, nil
}

func writeEvents(w io.Writer, events []domain.Event) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(events); err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	return nil
}
