// Package summary renders the short text report printed at the end of a publisher build.
package summary

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/MariaDeNazare/etl-macropulse-br/internal/model"
)

const (
	DefaultTargetSeries = "selic"
	FallbackText        = "Summary unavailable: not enough data after the ETL run."
	topMovers           = 3
	dateLayout          = "2006-01-02"
)

type Options struct {
	TargetSeries string
}

// section collects report lines. informative is false when every line only states that an
// input was empty, absent or unmatched.
type section struct {
	lines       []string
	informative bool
}

func (s *section) note(format string, args ...any) {
	s.lines = append(s.lines, fmt.Sprintf(format, args...))
}

func (s *section) add(format string, args ...any) {
	s.note(format, args...)
	s.informative = true
}

// Build renders the series and price highlights. It never returns an empty string.
func Build(series []model.TimeSeriesObservation, prices []model.PriceObservation, opts Options) string {
	target := strings.TrimSpace(opts.TargetSeries)
	if target == "" {
		target = DefaultTargetSeries
	}

	seriesPart := seriesSection(series, target)
	pricePart := priceSection(prices)
	if !seriesPart.informative && !pricePart.informative {
		return FallbackText
	}

	lines := make([]string, 0, len(seriesPart.lines)+len(pricePart.lines))
	lines = append(lines, seriesPart.lines...)
	lines = append(lines, pricePart.lines...)
	return strings.Join(lines, "\n")
}

func seriesSection(series []model.TimeSeriesObservation, target string) section {
	var out section
	if len(series) == 0 {
		out.note("BCB/SGS: no series data available.")
		return out
	}

	matched := make([]model.TimeSeriesObservation, 0)
	for _, row := range series {
		if strings.EqualFold(strings.TrimSpace(row.SeriesName), target) {
			matched = append(matched, row)
		}
	}
	if len(matched) == 0 {
		out.note("BCB/SGS: series %q not found.", target)
		return out
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.Before(matched[j].Date)
	})
	latest := matched[len(matched)-1]
	out.add("BCB/SGS - %s: latest value on %s = %.2f.", latest.SeriesName, latest.Date.Format(dateLayout), latest.Value)

	// matched is date ordered, so the last row seen per month is the month's closing value.
	monthly := make([]float64, 0)
	var current time.Time
	for _, row := range matched {
		month := monthStart(row.Date)
		if len(monthly) == 0 || !month.Equal(current) {
			monthly = append(monthly, row.Value)
			current = month
			continue
		}
		monthly[len(monthly)-1] = row.Value
	}
	if len(monthly) >= 2 {
		delta := monthly[len(monthly)-1] - monthly[len(monthly)-2]
		out.add("Change vs previous month: %+.2f p.p.", delta)
	}
	return out
}

type priceGroup struct {
	uf      string
	product string
	month   time.Time
}

type priceRow struct {
	priceGroup
	avg      float64
	delta    float64
	hasDelta bool
}

func priceSection(prices []model.PriceObservation) section {
	var out section

	buckets := make(map[priceGroup][]float64)
	for _, price := range prices {
		if price.DateRef.IsZero() {
			continue
		}
		key := priceGroup{uf: price.UFSigla, product: price.Product, month: monthStart(price.DateRef)}
		buckets[key] = append(buckets[key], price.Price)
	}
	if len(buckets) == 0 {
		out.note("ANP: no price data available.")
		return out
	}

	rows := make([]priceRow, 0, len(buckets))
	for key, values := range buckets {
		rows = append(rows, priceRow{priceGroup: key, avg: stat.Mean(values, nil)})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.uf != b.uf {
			return a.uf < b.uf
		}
		if a.product != b.product {
			return a.product < b.product
		}
		return a.month.Before(b.month)
	})

	latestMonth := rows[0].month
	for i := range rows {
		if rows[i].month.After(latestMonth) {
			latestMonth = rows[i].month
		}
		if i > 0 && rows[i-1].uf == rows[i].uf && rows[i-1].product == rows[i].product {
			rows[i].delta = rows[i].avg - rows[i-1].avg
			rows[i].hasDelta = true
		}
	}

	latest := make([]priceRow, 0)
	for _, row := range rows {
		if row.month.Equal(latestMonth) && row.hasDelta {
			latest = append(latest, row)
		}
	}
	if len(latest) == 0 {
		out.add("ANP: insufficient variation to highlight movers for %s.", latestMonth.Format(dateLayout))
		return out
	}

	sort.SliceStable(latest, func(i, j int) bool {
		return latest[i].delta > latest[j].delta
	})
	if len(latest) > topMovers {
		latest = latest[:topMovers]
	}

	out.add("ANP - Highlights for %s:", latestMonth.Format(dateLayout))
	for _, row := range latest {
		out.add("- %s / %s: average change %+.2f (vs previous month).", row.uf, row.product, row.delta)
	}
	return out
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
