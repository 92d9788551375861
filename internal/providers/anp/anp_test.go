package anp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func load(t *testing.T, path string) ([]string, [][]string) {
	t.Helper()
	source, err := New(Config{Path: path})
	require.NoError(t, err)
	table, err := source.Load(context.Background())
	require.NoError(t, err)
	return table.Header, table.Rows
}

func TestLoadSemicolonCSV(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Estado - Sigla;Produto;Data da Coleta;Valor de Venda\nSP;GASOLINA;02/01/2024;5,79\n;;;\nRJ;ETANOL;03/01/2024;4,19\n")...)
	header, rows := load(t, writeFile(t, "precos.csv", data))

	assert.Equal(t, []string{"Estado - Sigla", "Produto", "Data da Coleta", "Valor de Venda"}, header)
	assert.Equal(t, [][]string{
		{"SP", "GASOLINA", "02/01/2024", "5,79"},
		{"RJ", "ETANOL", "03/01/2024", "4,19"},
	}, rows)
}

func TestLoadCommaCSVFallback(t *testing.T) {
	header, rows := load(t, writeFile(t, "precos.csv", []byte("uf,produto,data,preco\nSP,GASOLINA,2024-01-02,\"5,79\"\n")))

	assert.Equal(t, []string{"uf", "produto", "data", "preco"}, header)
	assert.Equal(t, [][]string{{"SP", "GASOLINA", "2024-01-02", "5,79"}}, rows)
}

func TestLoadLatin1CSV(t *testing.T) {
	// "PREÇO" with Ç encoded as 0xC7
	data := []byte("ESTADO;PRODUTO;DATA;PRE\xc7O\nSP;GASOLINA;02/01/2024;5,79\n")
	header, _ := load(t, writeFile(t, "precos.csv", data))

	assert.Equal(t, "PREÇO", header[3])
}

func TestLoadWorkbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Estado - Sigla", "Produto", "Data da Coleta", "Valor de Venda"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"MG", "DIESEL", "05/02/2024", "6,01"}))
	path := filepath.Join(t.TempDir(), "precos.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	header, rows := load(t, path)
	assert.Equal(t, []string{"Estado - Sigla", "Produto", "Data da Coleta", "Valor de Venda"}, header)
	assert.Equal(t, [][]string{{"MG", "DIESEL", "05/02/2024", "6,01"}}, rows)
}

func TestLoadMissingFile(t *testing.T) {
	source, err := New(Config{Path: filepath.Join(t.TempDir(), "missing.csv")})
	require.NoError(t, err)

	_, err = source.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.csv")
}

func TestLoadEmptyFile(t *testing.T) {
	source, err := New(Config{Path: writeFile(t, "empty.csv", nil)})
	require.NoError(t, err)

	_, err = source.Load(context.Background())
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
