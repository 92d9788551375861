package transform

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/MariaDeNazare/etl-macropulse-br/internal/model"
)

// NormalizeSeries turns one bronze series extract into canonical observations ordered by
// (series_id, date). Rows with a missing date or a non-finite value are dropped and
// duplicate (series_id, date) keys keep the last row in sort order.
func NormalizeSeries(points []model.SeriesPoint, seriesName string) []model.TimeSeriesObservation {
	rows := make([]model.TimeSeriesObservation, 0, len(points))
	for _, point := range points {
		if point.Date.IsZero() {
			continue
		}
		if math.IsNaN(point.Value) || math.IsInf(point.Value, 0) {
			continue
		}
		rows = append(rows, model.TimeSeriesObservation{
			SeriesID:   point.SeriesID,
			SeriesName: seriesName,
			Date:       truncateDay(point.Date),
			Value:      point.Value,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].SeriesID != rows[j].SeriesID {
			return rows[i].SeriesID < rows[j].SeriesID
		}
		return rows[i].Date.Before(rows[j].Date)
	})

	out := make([]model.TimeSeriesObservation, 0, len(rows))
	for _, row := range rows {
		last := len(out) - 1
		if last >= 0 && out[last].SeriesID == row.SeriesID && out[last].Date.Equal(row.Date) {
			out[last] = row
			continue
		}
		out = append(out, row)
	}
	return out
}

// NormalizePrices resolves the header of a raw price extract and normalizes its rows.
func NormalizePrices(table model.RawTable) ([]model.PriceObservation, error) {
	mapping, err := ResolvePriceColumns(table.Header)
	if err != nil {
		return nil, err
	}
	return NormalizePricesWithMapping(table, mapping), nil
}

type priceKey struct {
	date    time.Time
	uf      string
	product string
}

// NormalizePricesWithMapping normalizes a raw price extract using an already resolved mapping.
// Output keeps input order; the first row for each (date_ref, uf_sigla, product) wins.
func NormalizePricesWithMapping(table model.RawTable, mapping ColumnMapping) []model.PriceObservation {
	ufIndex := mapping[FieldUF].Index
	productIndex := mapping[FieldProduct].Index
	dateIndex := mapping[FieldDate].Index
	priceIndex := mapping[FieldPrice].Index

	seen := make(map[priceKey]struct{}, len(table.Rows))
	out := make([]model.PriceObservation, 0, len(table.Rows))
	for _, record := range table.Rows {
		uf := strings.ToUpper(getCell(record, ufIndex))
		product := getCell(record, productIndex)
		dateRef, dateOK := ParseDayFirst(getCell(record, dateIndex))
		price, priceOK := ParseLocaleFloat(getCell(record, priceIndex))

		if !dateOK || uf == "" || product == "" || !priceOK || price <= 0 {
			continue
		}

		key := priceKey{date: dateRef, uf: uf, product: product}
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, model.PriceObservation{
			DateRef: dateRef,
			UFSigla: uf,
			Product: product,
			Price:   price,
		})
	}
	return out
}

func getCell(record []string, index int) string {
	if index < 0 || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}
