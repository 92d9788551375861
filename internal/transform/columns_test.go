package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Estado - Sigla", "estado sigla"},
		{"  PREÇO MÉDIO   REVENDA ", "preco medio revenda"},
		{"Data da Coleta", "data da coleta"},
		{"Valor_de__Venda", "valor de venda"},
		{"Produto", "produto"},
		{"---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLabel(tt.in))
		})
	}
}

func TestResolvePriceColumns(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   map[Field]int
	}{
		{
			name:   "canonical ANP header",
			header: []string{"Regiao - Sigla", "Estado - Sigla", "Municipio", "Produto", "Data da Coleta", "Valor de Venda", "Valor de Compra"},
			want:   map[Field]int{FieldUF: 1, FieldProduct: 3, FieldDate: 4, FieldPrice: 5},
		},
		{
			name:   "accents casing and punctuation",
			header: []string{"ESTADO_SIGLA", "PRODUTO", "DATA DA COLETA", "VALOR DE VENDA"},
			want:   map[Field]int{FieldUF: 0, FieldProduct: 1, FieldDate: 2, FieldPrice: 3},
		},
		{
			name:   "monthly summary layout",
			header: []string{"MÊS", "PRODUTO", "ESTADO (SIGLA)", "DATA INICIAL", "PREÇO MÉDIO REVENDA", "PREÇO MÍNIMO REVENDA"},
			want:   map[Field]int{FieldUF: 2, FieldProduct: 1, FieldDate: 3, FieldPrice: 4},
		},
		{
			name:   "token fallback for price",
			header: []string{"uf", "Nome do Produto", "Data Coleta", "Preço"},
			want:   map[Field]int{FieldUF: 0, FieldProduct: 1, FieldDate: 2, FieldPrice: 3},
		},
		{
			name:   "exact price candidate beats earlier token match",
			header: []string{"Estado Sigla", "Produto", "Data", "Preco Minimo", "Preco Medio Revenda"},
			want:   map[Field]int{FieldUF: 0, FieldProduct: 1, FieldDate: 2, FieldPrice: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping, err := ResolvePriceColumns(tt.header)
			require.NoError(t, err)
			require.Len(t, mapping, len(PriceFields))
			for field, index := range tt.want {
				assert.Equal(t, index, mapping[field].Index, "field %s", field)
				assert.Equal(t, tt.header[index], mapping[field].Label)
			}
		})
	}
}

func TestResolvePriceColumnsMissingField(t *testing.T) {
	full := map[Field]string{
		FieldUF:      "Estado - Sigla",
		FieldProduct: "Produto",
		FieldDate:    "Data da Coleta",
		FieldPrice:   "Valor de Venda",
	}

	for _, omitted := range PriceFields {
		t.Run(string(omitted), func(t *testing.T) {
			header := make([]string, 0, len(full))
			for _, field := range PriceFields {
				if field != omitted {
					header = append(header, full[field])
				}
			}

			mapping, err := ResolvePriceColumns(header)
			require.Error(t, err)
			assert.Nil(t, mapping)

			var mappingErr *SchemaMappingError
			require.True(t, errors.As(err, &mappingErr))
			assert.Equal(t, []Field{omitted}, mappingErr.Missing)
			assert.Contains(t, err.Error(), string(omitted))
		})
	}
}

func TestResolvePriceColumnsReportsEveryMissingField(t *testing.T) {
	_, err := ResolvePriceColumns([]string{"Municipio", "Bandeira"})

	var mappingErr *SchemaMappingError
	require.ErrorAs(t, err, &mappingErr)
	assert.Equal(t, PriceFields, mappingErr.Missing)
}

func TestMappingFromLabels(t *testing.T) {
	header := []string{"Sigla UF", "Combustível", "Dia", "Preço Bomba"}

	mapping, err := MappingFromLabels(header, map[Field]string{
		FieldUF:      "sigla uf",
		FieldProduct: "COMBUSTIVEL",
		FieldDate:    "Dia",
		FieldPrice:   "preco bomba",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, mapping[FieldUF].Index)
	assert.Equal(t, 1, mapping[FieldProduct].Index)
	assert.Equal(t, 2, mapping[FieldDate].Index)
	assert.Equal(t, 3, mapping[FieldPrice].Index)

	_, err = MappingFromLabels(header, map[Field]string{
		FieldUF:      "sigla uf",
		FieldProduct: "produto",
		FieldDate:    "Dia",
	})
	var mappingErr *SchemaMappingError
	require.ErrorAs(t, err, &mappingErr)
	assert.Equal(t, []Field{FieldProduct, FieldPrice}, mappingErr.Missing)
	assert.Equal(t, []string{"produto"}, mappingErr.Unknown)
}

func TestMappingFromLabelsRejectsPunctuationOnlyLabel(t *testing.T) {
	header := []string{"Estado - Sigla", "Produto", "Data da Coleta", "Valor de Venda"}

	for _, label := range []string{"--", "()"} {
		t.Run(label, func(t *testing.T) {
			mapping, err := MappingFromLabels(header, map[Field]string{
				FieldUF:      "Estado - Sigla",
				FieldProduct: "Produto",
				FieldDate:    "Data da Coleta",
				FieldPrice:   label,
			})
			assert.Nil(t, mapping)
			var mappingErr *SchemaMappingError
			require.ErrorAs(t, err, &mappingErr)
			assert.Equal(t, []Field{FieldPrice}, mappingErr.Missing)
			assert.Equal(t, []string{label}, mappingErr.Unknown)
		})
	}
}

func TestResolveFieldIgnoresEmptyRules(t *testing.T) {
	normalized := []string{"estado sigla", "produto"}

	_, ok := resolveField(normalized, []matcher{exact(""), containsAll()})
	assert.False(t, ok)
}
