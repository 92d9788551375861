package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/MariaDeNazare/etl-macropulse-br/internal/config"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/export"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/model"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/pipeline"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/store/sqlite"
)

const dateLayout = "2006-01-02"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "build":
		build(os.Args[2:])
	case "inspect":
		inspect(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func build(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", "", "run config file (default: inputs/run_config.yaml)")
	dbPath := fs.String("db", "", "sqlite database path (overrides config)")
	outDir := fs.String("out", "", "data directory for gold outputs (overrides config)")
	target := fs.String("series", "", "series name highlighted in the summary (overrides config)")
	fs.Parse(args)

	cfg, logger := loadConfig(*configPath)
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *outDir != "" {
		cfg.DataDir = *outDir
	}
	if *target != "" {
		cfg.TargetSeries = *target
	}

	st, err := sqlite.New(cfg.DBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to open database:", err)
		os.Exit(1)
	}
	defer st.Close()

	publisher := &pipeline.Publisher{
		Store:        st,
		Writer:       export.NewWriter(cfg.DataDir, logger),
		Logger:       logger,
		TargetSeries: cfg.TargetSeries,
		SummaryPath:  cfg.SummaryPath,
	}
	result, err := publisher.Build(context.Background())
	if err != nil {
		st.Close()
		fmt.Fprintln(os.Stderr, "publisher build failed:", err)
		os.Exit(1)
	}

	fmt.Printf("publisher build complete (out=%s series_monthly=%d price_monthly=%d)\n", cfg.DataDir, result.SeriesMonthly, result.PriceMonthly)
	fmt.Println("--- SUMMARY ---")
	fmt.Println(result.Summary)
}

func inspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	configPath := fs.String("config", "", "run config file (default: inputs/run_config.yaml)")
	dbPath := fs.String("db", "", "sqlite database path (overrides config)")
	limit := fs.Int("limit", 10, "rows shown per table")
	fs.Parse(args)

	cfg, _ := loadConfig(*configPath)
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	if err := runInspect(context.Background(), cfg.DBPath, *limit); err != nil {
		fmt.Fprintln(os.Stderr, "publisher inspect failed:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: publisher <build|inspect> [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "build options:")
	fmt.Fprintln(os.Stderr, "  -config   run config file (default: inputs/run_config.yaml)")
	fmt.Fprintln(os.Stderr, "  -db       sqlite database path (default: from config)")
	fmt.Fprintln(os.Stderr, "  -out      data directory (default: from config)")
	fmt.Fprintln(os.Stderr, "  -series   series name highlighted in the summary (default: selic)")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "inspect options:")
	fmt.Fprintln(os.Stderr, "  -config   run config file (default: inputs/run_config.yaml)")
	fmt.Fprintln(os.Stderr, "  -db       sqlite database path (default: from config)")
	fmt.Fprintln(os.Stderr, "  -limit    rows shown per table (default: 10)")
}

func loadConfig(path string) (*config.Config, *slog.Logger) {
	_ = godotenv.Load()

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger
}

func runInspect(ctx context.Context, dbPath string, limit int) error {
	if strings.TrimSpace(dbPath) == "" {
		return errors.New("database path is required")
	}
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("database not found: %w", err)
	}

	st, err := sqlite.New(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	tables, err := st.ListTables(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tROWS")
	for _, table := range tables {
		fmt.Fprintf(w, "%s\t%s\t%d\n", table.Name, table.Type, table.Rows)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	series, err := st.LatestSeries(ctx, limit)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println("latest series observations:")
	printSeries(series)

	prices, err := st.LatestPriceMonthly(ctx, limit)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println("latest monthly prices:")
	printPrices(prices)
	return nil
}

func printSeries(rows []model.TimeSeriesObservation) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES_ID\tSERIES_NAME\tDATE\tVALUE")
	for _, row := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.4f\n", row.SeriesID, row.SeriesName, row.Date.Format(dateLayout), row.Value)
	}
	w.Flush()
}

func printPrices(rows []model.PriceMonthly) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "UF\tPRODUCT\tMONTH\tAVG_PRICE\tMOM_CHANGE")
	for _, row := range rows {
		mom := "-"
		if row.HasMoM {
			mom = fmt.Sprintf("%+.4f", row.MoMChange)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\t%s\n", row.UFSigla, row.Product, row.Month.Format(dateLayout), row.AvgPrice, mom)
	}
	w.Flush()
}
