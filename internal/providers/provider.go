package providers

import (
	"context"
	"time"

	"github.com/MariaDeNazare/etl-macropulse-br/internal/model"
)

// SeriesProvider retrieves bronze time series extracts.
type SeriesProvider interface {
	Name() string
	FetchSeries(ctx context.Context, seriesID int64, from, to time.Time) ([]model.SeriesPoint, error)
}

// RegionProvider retrieves the first-level administrative region dimension.
type RegionProvider interface {
	Name() string
	ListRegions(ctx context.Context) ([]model.Region, error)
}

// PriceSource loads a raw price extract whose column layout is not known in advance.
type PriceSource interface {
	Name() string
	Load(ctx context.Context) (model.RawTable, error)
}
