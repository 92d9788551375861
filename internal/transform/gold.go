package transform

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/MariaDeNazare/etl-macropulse-br/internal/model"
)

type seriesMonthKey struct {
	id    int64
	name  string
	month time.Time
}

// AggregateSeriesMonthly groups observations by (series_id, series_name, month) and reports
// the mean value and the value of the chronologically last observation of each month.
func AggregateSeriesMonthly(observations []model.TimeSeriesObservation) []model.SeriesMonthly {
	if len(observations) == 0 {
		return []model.SeriesMonthly{}
	}

	rows := make([]model.TimeSeriesObservation, len(observations))
	copy(rows, observations)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	groups := make(map[seriesMonthKey][]float64)
	keys := make([]seriesMonthKey, 0)
	for _, row := range rows {
		key := seriesMonthKey{id: row.SeriesID, name: row.SeriesName, month: MonthStart(row.Date)}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], row.Value)
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.id != b.id {
			return a.id < b.id
		}
		if a.name != b.name {
			return a.name < b.name
		}
		return a.month.Before(b.month)
	})

	out := make([]model.SeriesMonthly, 0, len(keys))
	for _, key := range keys {
		values := groups[key]
		out = append(out, model.SeriesMonthly{
			SeriesID:   key.id,
			SeriesName: key.name,
			Month:      key.month,
			AvgValue:   stat.Mean(values, nil),
			LastValue:  values[len(values)-1],
		})
	}
	return out
}

type priceMonthKey struct {
	uf      string
	product string
	month   time.Time
}

// AggregatePriceMonthly averages prices per (uf_sigla, product, month) and fills the
// month-over-month change of each row.
func AggregatePriceMonthly(observations []model.PriceObservation) []model.PriceMonthly {
	if len(observations) == 0 {
		return []model.PriceMonthly{}
	}

	groups := make(map[priceMonthKey][]float64)
	keys := make([]priceMonthKey, 0)
	for _, observation := range observations {
		key := priceMonthKey{uf: observation.UFSigla, product: observation.Product, month: MonthStart(observation.DateRef)}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], observation.Price)
	}

	out := make([]model.PriceMonthly, 0, len(keys))
	for _, key := range keys {
		out = append(out, model.PriceMonthly{
			UFSigla:  key.uf,
			Product:  key.product,
			Month:    key.month,
			AvgPrice: stat.Mean(groups[key], nil),
		})
	}
	return MonthOverMonth(out)
}

// MonthOverMonth returns the rows sorted by (uf_sigla, product, month) with MoMChange set
// to the difference from the previous available month of the same (uf_sigla, product).
func MonthOverMonth(rows []model.PriceMonthly) []model.PriceMonthly {
	out := make([]model.PriceMonthly, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.UFSigla != b.UFSigla {
			return a.UFSigla < b.UFSigla
		}
		if a.Product != b.Product {
			return a.Product < b.Product
		}
		return a.Month.Before(b.Month)
	})

	for i := range out {
		out[i].MoMChange = 0
		out[i].HasMoM = false
		if i == 0 {
			continue
		}
		prev := out[i-1]
		if prev.UFSigla == out[i].UFSigla && prev.Product == out[i].Product {
			out[i].MoMChange = out[i].AvgPrice - prev.AvgPrice
			out[i].HasMoM = true
		}
	}
	return out
}
