package store

import (
	"context"

	"github.com/MariaDeNazare/etl-macropulse-br/internal/model"
)

// Store persists the silver and gold tables. Every Replace call swaps the full table
// contents, so repeated runs are idempotent.
type Store interface {
	ReplaceSeries(ctx context.Context, observations []model.TimeSeriesObservation) error
	ReplacePrices(ctx context.Context, observations []model.PriceObservation) error
	ReplaceRegions(ctx context.Context, regions []model.Region) error
	ReplaceSeriesMonthly(ctx context.Context, rows []model.SeriesMonthly) error
	ReplacePriceMonthly(ctx context.Context, rows []model.PriceMonthly) error
	ListSeries(ctx context.Context) ([]model.TimeSeriesObservation, error)
	ListPrices(ctx context.Context) ([]model.PriceObservation, error)
	Close() error
}

type NopStore struct{}

func (s *NopStore) ReplaceSeries(ctx context.Context, observations []model.TimeSeriesObservation) error {
	return nil
}

func (s *NopStore) ReplacePrices(ctx context.Context, observations []model.PriceObservation) error {
	return nil
}

func (s *NopStore) ReplaceRegions(ctx context.Context, regions []model.Region) error {
	return nil
}

func (s *NopStore) ReplaceSeriesMonthly(ctx context.Context, rows []model.SeriesMonthly) error {
	return nil
}

func (s *NopStore) ReplacePriceMonthly(ctx context.Context, rows []model.PriceMonthly) error {
	return nil
}

func (s *NopStore) ListSeries(ctx context.Context) ([]model.TimeSeriesObservation, error) {
	return nil, nil
}

func (s *NopStore) ListPrices(ctx context.Context) ([]model.PriceObservation, error) {
	return nil, nil
}

func (s *NopStore) Close() error {
	return nil
}

// TableInfo describes one table or view for the inspect command.
type TableInfo struct {
	Name string
	Type string
	Rows int64
}
