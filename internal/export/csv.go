package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Writer writes CSV artifacts below a data directory.
type Writer struct {
	baseDir string
	logger  *slog.Logger
}

func NewWriter(baseDir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{baseDir: baseDir, logger: logger}
}

// Path resolves a path relative to the writer's data directory.
func (w *Writer) Path(rel string) string {
	return filepath.Join(w.baseDir, filepath.FromSlash(rel))
}

// WriteCSV replaces the file at rel with header followed by records.
func (w *Writer) WriteCSV(rel string, header []string, records [][]string) error {
	fullPath := w.Path(rel)
	w.logger.Info("writing csv",
		slog.String("path", fullPath),
		slog.Int("record_count", len(records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("export: create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", fullPath, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("export: write records: %w", err)
	}
	return nil
}

// WritePartitioned replaces relDir with one column=value/part-0.csv file per distinct value
// of the partition column. The partition column is dropped from the files.
func (w *Writer) WritePartitioned(relDir, partitionColumn string, header []string, records [][]string) error {
	column := -1
	for i, name := range header {
		if name == partitionColumn {
			column = i
			break
		}
	}
	if column < 0 {
		return fmt.Errorf("export: partition column %q not in header", partitionColumn)
	}

	if err := os.RemoveAll(w.Path(relDir)); err != nil {
		return fmt.Errorf("export: clear %s: %w", relDir, err)
	}

	partitions := make(map[string][][]string)
	for _, record := range records {
		value := record[column]
		partitions[value] = append(partitions[value], without(record, column))
	}

	values := make([]string, 0, len(partitions))
	for value := range partitions {
		values = append(values, value)
	}
	sort.Strings(values)

	partHeader := without(header, column)
	for _, value := range values {
		rel := strings.Join([]string{relDir, partitionColumn + "=" + sanitize(value), "part-0.csv"}, "/")
		if err := w.WriteCSV(rel, partHeader, partitions[value]); err != nil {
			return err
		}
	}
	return nil
}

// WriteText replaces the file at rel with content.
func (w *Writer) WriteText(rel, content string) error {
	fullPath := w.Path(rel)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("export: create directory: %w", err)
	}
	return os.WriteFile(fullPath, []byte(content), 0o644)
}

// WriteJSON replaces the file at rel with the indented JSON encoding of value.
func (w *Writer) WriteJSON(rel string, value any) error {
	fullPath := w.Path(rel)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("export: create directory: %w", err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func without(record []string, index int) []string {
	out := make([]string, 0, len(record)-1)
	out = append(out, record[:index]...)
	return append(out, record[index+1:]...)
}

func sanitize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "__empty__"
	}
	return strings.NewReplacer("/", "_", "\\", "_", "=", "_").Replace(value)
}
