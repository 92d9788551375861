package transform

import (
	"fmt"
	"strings"
)

// SchemaMappingError reports the logical fields that could not be located in a raw header.
type SchemaMappingError struct {
	Missing []Field
	// Unknown holds override labels that are not present in the header.
	Unknown []string
}

func (e *SchemaMappingError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for _, field := range e.Missing {
		names = append(names, string(field))
	}
	msg := "transform: unable to map price columns automatically; missing: " + strings.Join(names, ", ")
	if len(e.Unknown) > 0 {
		msg += fmt.Sprintf(" (override labels not found in header: %s)", strings.Join(e.Unknown, ", "))
	}
	return msg + "; adjust the column mapping for this file header"
}
