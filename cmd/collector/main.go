package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/MariaDeNazare/etl-macropulse-br/internal/config"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/export"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/model"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/pipeline"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/providers/anp"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/providers/bcb"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/providers/ibge"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/store"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/store/sqlite"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/transform"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		run(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func run(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "run config file (default: inputs/run_config.yaml)")
	dbPath := fs.String("db", "", "sqlite database path (overrides config, \"-\" disables persistence)")
	anpFile := fs.String("anp", "", "ANP bronze file (overrides config)")
	series := fs.String("series", "", "comma-separated series ids to collect (default: all enabled)")
	fs.Parse(args)

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *anpFile != "" {
		cfg.ANPFile = *anpFile
	}
	if err := cfg.ValidateRun(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid run window:", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := runCollector(ctx, cfg, *series, logger); err != nil {
		var mappingErr *transform.SchemaMappingError
		if errors.As(err, &mappingErr) {
			fmt.Fprintln(os.Stderr, "ANP columns could not be mapped; set anp_columns in the run config")
		}
		fmt.Fprintln(os.Stderr, "collector run failed:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: collector run [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "options:")
	fmt.Fprintln(os.Stderr, "  -config   run config file (default: inputs/run_config.yaml)")
	fmt.Fprintln(os.Stderr, "  -db       sqlite database path (default: from config)")
	fmt.Fprintln(os.Stderr, "  -anp      ANP bronze file (default: from config)")
	fmt.Fprintln(os.Stderr, "  -series   comma-separated series ids (default: all enabled)")
}

func runCollector(ctx context.Context, cfg *config.Config, seriesCSV string, logger *slog.Logger) error {
	definitions, err := config.LoadSeries(cfg.SeriesFile)
	if err != nil {
		return fmt.Errorf("load series catalogue: %w", err)
	}
	definitions = config.EnabledSeries(definitions)

	if ids := parseList(seriesCSV); len(ids) > 0 {
		definitions, err = filterSeries(definitions, ids)
		if err != nil {
			return err
		}
	}
	if len(definitions) == 0 {
		return errors.New("no enabled series to collect")
	}

	seriesProvider, err := bcb.New(bcb.Config{
		BaseURL:         cfg.BCB.BaseURL,
		Timeout:         cfg.BCB.Timeout,
		RateLimitPerSec: cfg.BCB.RateLimit,
		RateLimitBurst:  cfg.BCB.Burst,
		MaxRetries:      cfg.BCB.MaxRetries,
		WindowYears:     cfg.BCB.WindowYears,
	})
	if err != nil {
		return err
	}
	regionProvider, err := ibge.New(ibge.Config{
		BaseURL: cfg.IBGE.BaseURL,
		Timeout: cfg.IBGE.Timeout,
	})
	if err != nil {
		return err
	}
	priceSource, err := anp.New(anp.Config{Path: cfg.ANPFile, Sheet: cfg.ANPSheet})
	if err != nil {
		return err
	}

	st, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	collector := &pipeline.Collector{
		Series:         seriesProvider,
		Regions:        regionProvider,
		Prices:         priceSource,
		Store:          st,
		Writer:         export.NewWriter(cfg.DataDir, logger),
		Logger:         logger,
		ColumnOverride: cfg.ColumnOverride(),
	}
	result, err := collector.Run(ctx, pipeline.CollectRequest{
		Series: definitions,
		From:   cfg.Start(),
		To:     cfg.End(),
	})
	if err != nil {
		return err
	}

	fmt.Printf("collector stored observations=%d prices=%d regions=%d\n", result.Observations, result.Prices, result.Regions)
	fmt.Printf("collector run complete (series=%d loaded=%d failed=%d)\n", result.Requested, result.Loaded, result.Failed)
	if result.Skipped > 0 {
		fmt.Printf("collector run skipped=%d\n", result.Skipped)
	}
	if dropped := result.RawPrices - result.Prices; dropped > 0 {
		fmt.Printf("collector dropped price rows=%d\n", dropped)
	}
	return nil
}

func openStore(path string) (store.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		return &store.NopStore{}, nil
	}
	return sqlite.New(path)
}

func filterSeries(definitions []model.SeriesDefinition, ids []string) ([]model.SeriesDefinition, error) {
	wanted := make(map[int64]struct{}, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid series id: %s", raw)
		}
		wanted[id] = struct{}{}
	}

	filtered := make([]model.SeriesDefinition, 0, len(definitions))
	for _, definition := range definitions {
		if _, ok := wanted[definition.ID]; ok {
			filtered = append(filtered, definition)
		}
	}
	return filtered, nil
}

func parseList(value string) []string {
	raw := strings.Split(value, ",")
	items := make([]string, 0, len(raw))
	for _, item := range raw {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		items = append(items, trimmed)
	}
	return items
}
