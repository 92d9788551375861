package anp

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/MariaDeNazare/etl-macropulse-br/internal/model"
)

var ErrEmptyFile = errors.New("anp: file has no header row")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Config struct {
	Path string
	// Sheet selects the worksheet of an xlsx file; the first sheet is used when empty.
	Sheet string
}

// Source reads an ANP price file placed locally by the operator. ANP layouts vary, so the
// table is returned with its header untouched.
type Source struct {
	config Config
}

func New(cfg Config) (*Source, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("anp: file path is required")
	}
	return &Source{config: cfg}, nil
}

func (s *Source) Name() string {
	return "anp"
}

func (s *Source) Load(ctx context.Context) (model.RawTable, error) {
	_ = ctx
	path := s.config.Path
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.RawTable{}, fmt.Errorf("anp: file not found: %s; download the ANP historical price series and place it at this path", path)
		}
		return model.RawTable{}, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadWorkbook(path, s.config.Sheet)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return model.RawTable{}, err
		}
		return parseDelimited(data)
	}
}

func loadWorkbook(path, sheet string) (model.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return model.RawTable{}, fmt.Errorf("anp: open workbook: %w", err)
	}
	defer f.Close()

	if strings.TrimSpace(sheet) == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return model.RawTable{}, ErrEmptyFile
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return model.RawTable{}, fmt.Errorf("anp: read sheet %q: %w", sheet, err)
	}
	return buildTable(rows)
}

// parseDelimited reads ';' separated text, falling back to ',' when ';' does not split the
// header. Input that is not valid UTF-8 is decoded as Windows-1252.
func parseDelimited(data []byte) (model.RawTable, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return model.RawTable{}, fmt.Errorf("anp: decode legacy encoding: %w", err)
		}
		data = decoded
	}

	records, err := readRecords(data, ';')
	if err == nil && len(records) > 0 && len(records[0]) > 1 {
		return buildTable(records)
	}
	records, err = readRecords(data, ',')
	if err != nil {
		return model.RawTable{}, fmt.Errorf("anp: parse csv: %w", err)
	}
	return buildTable(records)
}

func readRecords(data []byte, separator rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = separator
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records := make([][]string, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func buildTable(records [][]string) (model.RawTable, error) {
	if len(records) == 0 {
		return model.RawTable{}, ErrEmptyFile
	}
	table := model.RawTable{
		Header: records[0],
		Rows:   make([][]string, 0, len(records)-1),
	}
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

func isBlank(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
