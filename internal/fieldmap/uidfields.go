package fieldmap

import "strings"

// DefaultUIDFields derives the unique ID from family and given name.
var DefaultUIDFields = []string{"N:0", "N:1"}

// UIDField is one raw vCard field component that contributes to a contact's
// unique ID.
type UIDField struct {
	Field string
	Part  int
}

// Matches reports whether header (the text before the first colon of a
// content line) names this field exactly.
func (f UIDField) Matches(header string) bool {
	return header == f.Field
}

// CompileUIDFields parses "field SEP part" strings, preserving order.
func CompileUIDFields(specs []string, sep string) ([]UIDField, error) {
	if sep == "" {
		return nil, &ConfigError{Kind: "separator", Reason: "separator must not be empty"}
	}

	fields := make([]UIDField, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, sep)
		if len(parts) != 2 {
			return nil, malformed("unique field", spec, "expected field"+sep+"part")
		}
		if parts[0] == "" {
			return nil, malformed("unique field", spec, "empty field name")
		}
		index, err := parsePart(parts[1])
		if err != nil {
			return nil, malformed("unique field", spec, err.Error())
		}
		fields = append(fields, UIDField{Field: parts[0], Part: index})
	}
	return fields, nil
}

// DefaultUID compiles DefaultUIDFields.
func DefaultUID() []UIDField {
	fields, err := CompileUIDFields(DefaultUIDFields, DefaultSeparator)
	if err != nil {
		panic("default unique fields: " + err.Error())
	}
	return fields
}
