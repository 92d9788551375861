package export

import (
	"math"
	"strconv"

	"github.com/MariaDeNazare/etl-macropulse-br/internal/model"
)

const dateLayout = "2006-01-02"

var (
	SeriesPointHeader   = []string{"series_id", "date", "value"}
	RegionHeader        = []string{"uf_id", "uf_sigla", "uf_nome", "regiao_nome"}
	SeriesMonthlyHeader = []string{"series_id", "series_name", "month", "avg_value", "last_value"}
	PriceMonthlyHeader  = []string{"uf_sigla", "product", "month", "avg_price", "mom_change"}
)

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func SeriesPointRecords(points []model.SeriesPoint) [][]string {
	records := make([][]string, 0, len(points))
	for _, p := range points {
		date := ""
		if !p.Date.IsZero() {
			date = p.Date.Format(dateLayout)
		}
		records = append(records, []string{strconv.FormatInt(p.SeriesID, 10), date, formatFloat(p.Value)})
	}
	return records
}

func RegionRecords(regions []model.Region) [][]string {
	records := make([][]string, 0, len(regions))
	for _, r := range regions {
		records = append(records, []string{strconv.Itoa(r.ID), r.Sigla, r.Nome, r.RegiaoNome})
	}
	return records
}

func SeriesMonthlyRecords(rows []model.SeriesMonthly) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			strconv.FormatInt(r.SeriesID, 10),
			r.SeriesName,
			r.Month.Format(dateLayout),
			formatFloat(r.AvgValue),
			formatFloat(r.LastValue),
		})
	}
	return records
}

func PriceMonthlyRecords(rows []model.PriceMonthly) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		mom := ""
		if r.HasMoM {
			mom = formatFloat(r.MoMChange)
		}
		records = append(records, []string{r.UFSigla, r.Product, r.Month.Format(dateLayout), formatFloat(r.AvgPrice), mom})
	}
	return records
}
