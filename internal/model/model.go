package model

import "time"

// SeriesPoint is a bronze BCB/SGS row. A zero Date means the source date did not parse.
type SeriesPoint struct {
	SeriesID int64
	Date     time.Time
	Value    float64
}

type SeriesDefinition struct {
	ID      int64
	Name    string
	Enabled bool
}

type Region struct {
	ID         int
	Sigla      string
	Nome       string
	RegiaoNome string
}

// RawTable is a loosely structured extract whose header labels are not known in advance.
type RawTable struct {
	Header []string
	Rows   [][]string
}

type TimeSeriesObservation struct {
	SeriesID   int64
	SeriesName string
	Date       time.Time
	Value      float64
}

type PriceObservation struct {
	DateRef time.Time
	UFSigla string
	Product string
	Price   float64
}

type SeriesMonthly struct {
	SeriesID   int64
	SeriesName string
	Month      time.Time
	AvgValue   float64
	LastValue  float64
}

type PriceMonthly struct {
	UFSigla  string
	Product  string
	Month    time.Time
	AvgPrice float64
	// MoMChange is only meaningful when HasMoM is set; the first month of a group has none.
	MoMChange float64
	HasMoM    bool
}
