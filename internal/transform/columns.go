package transform

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	textx "golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Field string

const (
	FieldUF      Field = "uf"
	FieldProduct Field = "product"
	FieldDate    Field = "date"
	FieldPrice   Field = "price"
)

// PriceFields lists the logical price fields in resolution and reporting order.
var PriceFields = []Field{FieldUF, FieldProduct, FieldDate, FieldPrice}

type Column struct {
	Index int
	Label string
}

// ColumnMapping maps each logical field to the source column that holds it.
type ColumnMapping map[Field]Column

type matchKind int

const (
	matchExact matchKind = iota
	matchTokens
)

type matcher struct {
	kind   matchKind
	exact  string
	tokens []string
}

func exact(label string) matcher {
	return matcher{kind: matchExact, exact: label}
}

func containsAll(tokens ...string) matcher {
	return matcher{kind: matchTokens, tokens: tokens}
}

var priceRules = map[Field][]matcher{
	FieldUF: {
		exact("estado sigla"),
		exact("uf"),
		containsAll("estado", "sigla"),
	},
	FieldProduct: {
		exact("produto"),
		containsAll("produto"),
	},
	FieldDate: {
		exact("data da coleta"),
		containsAll("data", "coleta"),
		containsAll("data"),
	},
	FieldPrice: {
		exact("valor de venda"),
		containsAll("valor", "venda"),
		exact("preco medio revenda"),
		containsAll("preco", "medio"),
		containsAll("preco"),
	},
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeLabel folds a header label to lowercase ASCII words separated by single spaces.
func NormalizeLabel(label string) string {
	folded, _, err := textx.String(textx.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), label)
	if err != nil {
		folded = label
	}
	folded = strings.ToLower(folded)
	folded = nonAlnum.ReplaceAllString(folded, " ")
	return strings.TrimSpace(folded)
}

// ResolvePriceColumns locates the uf, product, date and price columns of a raw price header.
func ResolvePriceColumns(header []string) (ColumnMapping, error) {
	normalized := make([]string, len(header))
	for i, label := range header {
		normalized[i] = NormalizeLabel(label)
	}

	mapping := make(ColumnMapping, len(PriceFields))
	missing := make([]Field, 0)
	for _, field := range PriceFields {
		index, ok := resolveField(normalized, priceRules[field])
		if !ok {
			missing = append(missing, field)
			continue
		}
		mapping[field] = Column{Index: index, Label: header[index]}
	}
	if len(missing) > 0 {
		return nil, &SchemaMappingError{Missing: missing}
	}
	return mapping, nil
}

// MappingFromLabels builds a mapping from caller-supplied header labels. Labels are compared
// after NormalizeLabel, so accents and casing need not match the file exactly.
func MappingFromLabels(header []string, labels map[Field]string) (ColumnMapping, error) {
	normalized := make([]string, len(header))
	for i, label := range header {
		normalized[i] = NormalizeLabel(label)
	}

	mapping := make(ColumnMapping, len(PriceFields))
	var mappingErr SchemaMappingError
	for _, field := range PriceFields {
		label, ok := labels[field]
		if !ok || strings.TrimSpace(label) == "" {
			mappingErr.Missing = append(mappingErr.Missing, field)
			continue
		}
		wanted := NormalizeLabel(label)
		if wanted == "" {
			mappingErr.Missing = append(mappingErr.Missing, field)
			mappingErr.Unknown = append(mappingErr.Unknown, label)
			continue
		}
		index, ok := resolveField(normalized, []matcher{exact(wanted)})
		if !ok {
			mappingErr.Missing = append(mappingErr.Missing, field)
			mappingErr.Unknown = append(mappingErr.Unknown, label)
			continue
		}
		mapping[field] = Column{Index: index, Label: header[index]}
	}
	if len(mappingErr.Missing) > 0 {
		return nil, &mappingErr
	}
	return mapping, nil
}

func resolveField(normalized []string, rules []matcher) (int, bool) {
	for _, rule := range rules {
		switch rule.kind {
		case matchExact:
			if rule.exact == "" {
				continue
			}
			for i, label := range normalized {
				if label == rule.exact {
					return i, true
				}
			}
		case matchTokens:
			if len(rule.tokens) == 0 {
				continue
			}
			for i, label := range normalized {
				if containsTokens(label, rule.tokens) {
					return i, true
				}
			}
		}
	}
	return -1, false
}

func containsTokens(label string, tokens []string) bool {
	if label == "" {
		return false
	}
	for _, token := range tokens {
		if !strings.Contains(label, token) {
			return false
		}
	}
	return true
}
