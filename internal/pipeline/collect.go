package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MariaDeNazare/etl-macropulse-br/internal/export"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/model"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/providers"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/providers/bcb"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/store"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/transform"
)

// Collector extracts the bronze inputs, normalizes them to silver and loads the silver
// tables into the store.
type Collector struct {
	Series  providers.SeriesProvider
	Regions providers.RegionProvider
	Prices  providers.PriceSource
	Store   store.Store
	Writer  *export.Writer
	Logger  *slog.Logger
	// ColumnOverride replaces automatic ANP header resolution when set.
	ColumnOverride map[transform.Field]string
}

type CollectRequest struct {
	Series []model.SeriesDefinition
	From   time.Time
	To     time.Time
}

type CollectResult struct {
	Requested    int
	Loaded       int
	Skipped      int
	Failed       int
	Observations int
	RawPrices    int
	Prices       int
	Regions      int
}

func (c *Collector) Run(ctx context.Context, req CollectRequest) (CollectResult, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var result CollectResult

	observations := make([]model.TimeSeriesObservation, 0)
	for _, definition := range req.Series {
		result.Requested++
		points, err := c.Series.FetchSeries(ctx, definition.ID, req.From, req.To)
		if err != nil {
			if errors.Is(err, bcb.ErrNoRecords) {
				result.Skipped++
				logger.Warn("series has no records",
					slog.String("provider", c.Series.Name()),
					slog.Int64("series_id", definition.ID),
					slog.String("series_name", definition.Name))
				continue
			}
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Failed++
			logger.Error("series fetch failed",
				slog.String("provider", c.Series.Name()),
				slog.Int64("series_id", definition.ID),
				slog.String("error", err.Error()))
			continue
		}

		if err := c.Writer.WriteCSV(fmt.Sprintf("bronze/bcb_sgs_%d.csv", definition.ID), export.SeriesPointHeader, export.SeriesPointRecords(points)); err != nil {
			return result, err
		}

		silver := transform.NormalizeSeries(points, definition.Name)
		logger.Info("series normalized",
			slog.Int64("series_id", definition.ID),
			slog.Int("rows_in", len(points)),
			slog.Int("rows_out", len(silver)),
			slog.Int("dropped", len(points)-len(silver)))
		observations = append(observations, silver...)
		result.Loaded++
	}
	result.Observations = len(observations)

	// A failed region fetch leaves the previously loaded dimension in place.
	regions, err := c.Regions.ListRegions(ctx)
	regionsOK := err == nil
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		logger.Warn("region dimension unavailable, keeping the stored one",
			slog.String("provider", c.Regions.Name()),
			slog.String("error", err.Error()))
		regions = nil
	} else if err := c.Writer.WriteCSV("bronze/ibge_uf_dim.csv", export.RegionHeader, export.RegionRecords(regions)); err != nil {
		return result, err
	}
	result.Regions = len(regions)

	raw, err := c.Prices.Load(ctx)
	if err != nil {
		return result, err
	}
	result.RawPrices = len(raw.Rows)
	if err := c.Writer.WriteCSV("bronze/anp_raw.csv", raw.Header, raw.Rows); err != nil {
		return result, err
	}

	prices, err := c.normalizePrices(raw)
	if err != nil {
		return result, err
	}
	result.Prices = len(prices)
	logger.Info("prices normalized",
		slog.String("provider", c.Prices.Name()),
		slog.Int("rows_in", len(raw.Rows)),
		slog.Int("rows_out", len(prices)),
		slog.Int("dropped", len(raw.Rows)-len(prices)))

	if err := c.Store.ReplaceSeries(ctx, observations); err != nil {
		return result, fmt.Errorf("load silver series: %w", err)
	}
	if err := c.Store.ReplacePrices(ctx, prices); err != nil {
		return result, fmt.Errorf("load silver prices: %w", err)
	}
	if regionsOK {
		if err := c.Store.ReplaceRegions(ctx, regions); err != nil {
			return result, fmt.Errorf("load region dimension: %w", err)
		}
	}
	return result, nil
}

func (c *Collector) normalizePrices(raw model.RawTable) ([]model.PriceObservation, error) {
	if len(c.ColumnOverride) == 0 {
		return transform.NormalizePrices(raw)
	}
	mapping, err := transform.MappingFromLabels(raw.Header, c.ColumnOverride)
	if err != nil {
		return nil, err
	}
	return transform.NormalizePricesWithMapping(raw, mapping), nil
}
