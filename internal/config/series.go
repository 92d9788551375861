package config

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/MariaDeNazare/etl-macropulse-br/internal/model"
)

// LoadSeries reads the series catalogue: a CSV with series_id, series_name and an optional
// enabled column. Rows without an enabled column are treated as enabled.
func LoadSeries(path string) ([]model.SeriesDefinition, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headerRow, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("series file is empty")
		}
		return nil, err
	}
	header := normalizeHeader(headerRow)
	if _, ok := header["series_id"]; !ok {
		return nil, errors.New("series file: missing series_id column")
	}
	if _, ok := header["series_name"]; !ok {
		return nil, errors.New("series file: missing series_name column")
	}
	_, hasEnabled := header["enabled"]

	definitions := make([]model.SeriesDefinition, 0)
	seen := make(map[int64]int)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		rawID := getCell(record, header, "series_id")
		if rawID == "" || strings.HasPrefix(rawID, "#") {
			continue
		}
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("series file line %d: invalid series_id %q", line, rawID)
		}
		if first, ok := seen[id]; ok {
			return nil, fmt.Errorf("series file line %d: duplicate series_id %d (first seen on line %d)", line, id, first)
		}
		seen[id] = line
		name := getCell(record, header, "series_name")
		if name == "" {
			return nil, fmt.Errorf("series file line %d: series_name is required", line)
		}

		enabled := true
		if hasEnabled {
			enabled = parseBool(getCell(record, header, "enabled"))
		}
		definitions = append(definitions, model.SeriesDefinition{ID: id, Name: name, Enabled: enabled})
	}
	return definitions, nil
}

// EnabledSeries keeps the definitions flagged as enabled, preserving order.
func EnabledSeries(definitions []model.SeriesDefinition) []model.SeriesDefinition {
	enabled := make([]model.SeriesDefinition, 0, len(definitions))
	for _, definition := range definitions {
		if definition.Enabled {
			enabled = append(enabled, definition)
		}
	}
	return enabled
}

func normalizeHeader(header []string) map[string]int {
	result := make(map[string]int, len(header))
	for i, value := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(value, "\ufeff")))
		if key == "" {
			continue
		}
		result[key] = i
	}
	return result
}

func getCell(record []string, header map[string]int, key string) string {
	index, ok := header[key]
	if !ok || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
