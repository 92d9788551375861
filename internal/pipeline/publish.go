package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MariaDeNazare/etl-macropulse-br/internal/export"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/store"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/summary"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/transform"
)

const (
	SeriesMonthlyDir = "gold/bcb_monthly"
	PriceMonthlyDir  = "gold/anp_monthly"
	MetaFile         = "gold/meta.json"
)

// Publisher reads the silver tables back from the store, builds the gold aggregates and
// writes the run summary.
type Publisher struct {
	Store        store.Store
	Writer       *export.Writer
	Logger       *slog.Logger
	TargetSeries string
	SummaryPath  string
	Now          func() time.Time
}

type PublishResult struct {
	SeriesMonthly int
	PriceMonthly  int
	Summary       string
}

type metaFile struct {
	GeneratedAt   string `json:"generated_at"`
	SeriesMonthly int    `json:"series_monthly_rows"`
	PriceMonthly  int    `json:"price_monthly_rows"`
	TargetSeries  string `json:"target_series"`
}

func (p *Publisher) Build(ctx context.Context) (PublishResult, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var result PublishResult

	series, err := p.Store.ListSeries(ctx)
	if err != nil {
		return result, fmt.Errorf("read silver series: %w", err)
	}
	prices, err := p.Store.ListPrices(ctx)
	if err != nil {
		return result, fmt.Errorf("read silver prices: %w", err)
	}

	seriesMonthly := transform.AggregateSeriesMonthly(series)
	priceMonthly := transform.AggregatePriceMonthly(prices)
	result.SeriesMonthly = len(seriesMonthly)
	result.PriceMonthly = len(priceMonthly)
	logger.Info("gold aggregated",
		slog.Int("series_rows", len(series)),
		slog.Int("series_monthly", len(seriesMonthly)),
		slog.Int("price_rows", len(prices)),
		slog.Int("price_monthly", len(priceMonthly)))

	if err := p.Store.ReplaceSeriesMonthly(ctx, seriesMonthly); err != nil {
		return result, fmt.Errorf("load gold series: %w", err)
	}
	if err := p.Store.ReplacePriceMonthly(ctx, priceMonthly); err != nil {
		return result, fmt.Errorf("load gold prices: %w", err)
	}

	if err := p.Writer.WritePartitioned(SeriesMonthlyDir, "series_id", export.SeriesMonthlyHeader, export.SeriesMonthlyRecords(seriesMonthly)); err != nil {
		return result, err
	}
	if err := p.Writer.WritePartitioned(PriceMonthlyDir, "uf_sigla", export.PriceMonthlyHeader, export.PriceMonthlyRecords(priceMonthly)); err != nil {
		return result, err
	}

	target := p.TargetSeries
	if target == "" {
		target = summary.DefaultTargetSeries
	}
	result.Summary = summary.Build(series, prices, summary.Options{TargetSeries: target})
	if p.SummaryPath != "" {
		if err := p.Writer.WriteText(p.SummaryPath, result.Summary+"\n"); err != nil {
			return result, err
		}
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	meta := metaFile{
		GeneratedAt:   now().UTC().Format(time.RFC3339),
		SeriesMonthly: result.SeriesMonthly,
		PriceMonthly:  result.PriceMonthly,
		TargetSeries:  target,
	}
	if err := p.Writer.WriteJSON(MetaFile, meta); err != nil {
		return result, err
	}
	return result, nil
}
