package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MariaDeNazare/etl-macropulse-br/internal/model"
)

func TestAggregateSeriesMonthly(t *testing.T) {
	observations := []model.TimeSeriesObservation{
		{SeriesID: 432, SeriesName: "selic", Date: day(2024, time.March, 28), Value: 10.75},
		{SeriesID: 432, SeriesName: "selic", Date: day(2024, time.March, 5), Value: 11.25},
		{SeriesID: 432, SeriesName: "selic", Date: day(2024, time.April, 10), Value: 10.50},
		{SeriesID: 433, SeriesName: "ipca", Date: day(2024, time.March, 1), Value: 0.16},
	}

	got := AggregateSeriesMonthly(observations)

	require.Len(t, got, 3)
	march := got[0]
	assert.Equal(t, int64(432), march.SeriesID)
	assert.Equal(t, "selic", march.SeriesName)
	assert.Equal(t, day(2024, time.March, 1), march.Month)
	assert.InDelta(t, 11.0, march.AvgValue, 1e-9)
	assert.Equal(t, 10.75, march.LastValue)

	assert.Equal(t, day(2024, time.April, 1), got[1].Month)
	assert.Equal(t, 10.50, got[1].LastValue)

	assert.Equal(t, int64(433), got[2].SeriesID)
	assert.InDelta(t, 0.16, got[2].AvgValue, 1e-9)
}

func TestAggregateSeriesMonthlyEmpty(t *testing.T) {
	got := AggregateSeriesMonthly(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAggregatePriceMonthly(t *testing.T) {
	observations := []model.PriceObservation{
		{DateRef: day(2024, time.February, 20), UFSigla: "SP", Product: "GASOLINA", Price: 5.10},
		{DateRef: day(2024, time.January, 3), UFSigla: "SP", Product: "GASOLINA", Price: 4.90},
		{DateRef: day(2024, time.January, 17), UFSigla: "SP", Product: "GASOLINA", Price: 5.10},
		{DateRef: day(2024, time.February, 2), UFSigla: "SP", Product: "GASOLINA", Price: 5.30},
		{DateRef: day(2024, time.February, 2), UFSigla: "RJ", Product: "ETANOL", Price: 4.00},
	}

	got := AggregatePriceMonthly(observations)

	require.Len(t, got, 3)

	assert.Equal(t, "RJ", got[0].UFSigla)
	assert.False(t, got[0].HasMoM)

	jan, feb := got[1], got[2]
	assert.Equal(t, day(2024, time.January, 1), jan.Month)
	assert.InDelta(t, 5.00, jan.AvgPrice, 1e-9)
	assert.False(t, jan.HasMoM)

	assert.Equal(t, day(2024, time.February, 1), feb.Month)
	assert.InDelta(t, 5.20, feb.AvgPrice, 1e-9)
	require.True(t, feb.HasMoM)
	assert.InDelta(t, 0.20, feb.MoMChange, 1e-9)
}

func TestAggregatePriceMonthlyEmpty(t *testing.T) {
	got := AggregatePriceMonthly([]model.PriceObservation{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMonthOverMonthUsesPreviousAvailableMonth(t *testing.T) {
	rows := []model.PriceMonthly{
		{UFSigla: "BA", Product: "DIESEL", Month: day(2024, time.April, 1), AvgPrice: 6.40},
		{UFSigla: "BA", Product: "DIESEL", Month: day(2024, time.January, 1), AvgPrice: 6.00},
	}

	got := MonthOverMonth(rows)

	require.Len(t, got, 2)
	assert.False(t, got[0].HasMoM)
	assert.True(t, got[1].HasMoM)
	assert.InDelta(t, 0.40, got[1].MoMChange, 1e-9)
	// input is left untouched
	assert.Equal(t, day(2024, time.April, 1), rows[0].Month)
}
