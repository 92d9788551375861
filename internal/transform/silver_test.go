package transform

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MariaDeNazare/etl-macropulse-br/internal/model"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeSeries(t *testing.T) {
	points := []model.SeriesPoint{
		{SeriesID: 432, Date: day(2024, time.March, 5), Value: 11.25},
		{SeriesID: 432, Date: day(2024, time.January, 2), Value: 11.75},
		{SeriesID: 432, Date: time.Time{}, Value: 99},
		{SeriesID: 432, Date: day(2024, time.March, 5), Value: 10.75},
		{SeriesID: 11, Date: day(2024, time.February, 1), Value: 0.04},
		{SeriesID: 11, Date: day(2024, time.February, 2), Value: math.NaN()},
	}

	got := NormalizeSeries(points, "selic")

	require.Len(t, got, 3)
	assert.Equal(t, model.TimeSeriesObservation{SeriesID: 11, SeriesName: "selic", Date: day(2024, time.February, 1), Value: 0.04}, got[0])
	assert.Equal(t, model.TimeSeriesObservation{SeriesID: 432, SeriesName: "selic", Date: day(2024, time.January, 2), Value: 11.75}, got[1])
	// duplicate (432, 2024-03-05): the later row in input order survives
	assert.Equal(t, model.TimeSeriesObservation{SeriesID: 432, SeriesName: "selic", Date: day(2024, time.March, 5), Value: 10.75}, got[2])
}

func TestNormalizeSeriesEmpty(t *testing.T) {
	got := NormalizeSeries(nil, "ipca")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNormalizeSeriesDoesNotMutateInput(t *testing.T) {
	points := []model.SeriesPoint{
		{SeriesID: 1, Date: day(2024, time.May, 2), Value: 2},
		{SeriesID: 1, Date: day(2024, time.May, 1), Value: 1},
	}
	_ = NormalizeSeries(points, "x")
	assert.Equal(t, day(2024, time.May, 2), points[0].Date)
}

func anpTable(rows ...[]string) model.RawTable {
	return model.RawTable{
		Header: []string{"Regiao - Sigla", "Estado - Sigla", "Produto", "Data da Coleta", "Valor de Venda"},
		Rows:   rows,
	}
}

func TestNormalizePrices(t *testing.T) {
	table := anpTable(
		[]string{"SE", " sp ", " GASOLINA ", "03/04/2024", "5,79"},
		[]string{"SE", "SP", "GASOLINA", "03/04/2024", "5.99"},
		[]string{"SE", "RJ", "ETANOL", "2024-04-03", "1.234,56"},
		[]string{"SE", "RJ", "ETANOL", "04/04/2024", "0"},
		[]string{"SE", "RJ", "ETANOL", "05/04/2024", "-1,00"},
		[]string{"SE", "RJ", "ETANOL", "sem data", "4,10"},
		[]string{"SE", "", "ETANOL", "06/04/2024", "4,10"},
		[]string{"SE", "MG", "", "06/04/2024", "4,10"},
		[]string{"SE", "MG", "DIESEL", "06/04/2024", "n/d"},
		[]string{"SE", "MG"},
	)

	got, err := NormalizePrices(table)
	require.NoError(t, err)

	assert.Equal(t, []model.PriceObservation{
		{DateRef: day(2024, time.April, 3), UFSigla: "SP", Product: "GASOLINA", Price: 5.79},
		{DateRef: day(2024, time.April, 3), UFSigla: "RJ", Product: "ETANOL", Price: 1234.56},
	}, got)
}

func TestNormalizePricesNeverEmitsInvalidRows(t *testing.T) {
	table := anpTable(
		[]string{"S", "SP", "GASOLINA", "01/02/2024", "0,00"},
		[]string{"S", "SP", "GASOLINA", "02/02/2024", "-5.10"},
		[]string{"S", "SP", "GASOLINA", "99/99/2024", "5,10"},
		[]string{"S", "SP", "GASOLINA", "03/02/2024", "5,10"},
	)

	got, err := NormalizePrices(table)
	require.NoError(t, err)
	require.Len(t, got, 1)
	for _, row := range got {
		assert.Greater(t, row.Price, 0.0)
		assert.False(t, row.DateRef.IsZero())
	}
}

func TestNormalizePricesPropagatesSchemaMappingError(t *testing.T) {
	table := model.RawTable{
		Header: []string{"Estado - Sigla", "Data da Coleta", "Valor de Venda"},
		Rows:   [][]string{{"SP", "01/01/2024", "5,00"}},
	}

	got, err := NormalizePrices(table)
	assert.Nil(t, got)

	var mappingErr *SchemaMappingError
	require.True(t, errors.As(err, &mappingErr))
	assert.Equal(t, []Field{FieldProduct}, mappingErr.Missing)
}
