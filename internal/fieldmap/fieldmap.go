// Package fieldmap compiles the user-facing mapping strings that tell
// vcfmerge which vCard field feeds which template marker.
//
// A mapping is written as
//
//	marker SEP field [SEP part]
//
// where part selects one ';'-delimited component of the field value.
// Unique-ID fields use "field SEP part" and extra values "key SEP value".
package fieldmap

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultSeparator separates the components of a mapping string.
const DefaultSeparator = ":"

// DefaultMappings covers the name and home-address parts of a vCard.
var DefaultMappings = []string{
	"firstName:N:1",
	"lastName:N:0",
	"streetAddress:ADR;TYPE=HOME:2",
	"postalCodeAddress:ADR;TYPE=HOME:5",
	"cityAddress:ADR;TYPE=HOME:3",
	"countryAddress:ADR;TYPE=HOME:6",
}

// SubPart optionally selects one ';'-delimited component of a field value.
// The zero value selects the whole value.
type SubPart struct {
	index int
	set   bool
}

// NoSubPart selects the whole field value.
func NoSubPart() SubPart {
	return SubPart{}
}

// SubPartAt selects the component at index.
func SubPartAt(index int) SubPart {
	return SubPart{index: index, set: true}
}

// Index returns the selected component and whether one is configured.
func (p SubPart) Index() (int, bool) {
	return p.index, p.set
}

// String renders the sub-part the way it is written in a mapping.
func (p SubPart) String() string {
	if !p.set {
		return ""
	}
	return strconv.Itoa(p.index)
}

// Mapping associates a template marker with a vCard field.
type Mapping struct {
	Marker string
	Field  string
	Part   SubPart
}

// Matches reports whether a vCard content line carries this mapping's field.
func (m Mapping) Matches(line string) bool {
	return strings.HasPrefix(line, m.Field+":")
}

// Table is an ordered set of mappings keyed by marker.
// A marker compiled twice keeps its first position and its last definition.
type Table struct {
	mappings []Mapping
	index    map[string]int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// Set adds or replaces the mapping for m.Marker.
func (t *Table) Set(m Mapping) {
	if i, ok := t.index[m.Marker]; ok {
		t.mappings[i] = m
		return
	}
	t.index[m.Marker] = len(t.mappings)
	t.mappings = append(t.mappings, m)
}

// Lookup returns the mapping for marker.
func (t *Table) Lookup(marker string) (Mapping, bool) {
	i, ok := t.index[marker]
	if !ok {
		return Mapping{}, false
	}
	return t.mappings[i], true
}

// Mappings returns the mappings in table order.
func (t *Table) Mappings() []Mapping {
	out := make([]Mapping, len(t.mappings))
	copy(out, t.mappings)
	return out
}

// Markers returns the marker names in table order.
func (t *Table) Markers() []string {
	out := make([]string, 0, len(t.mappings))
	for _, m := range t.mappings {
		out = append(out, m.Marker)
	}
	return out
}

// Len returns the number of mappings.
func (t *Table) Len() int {
	return len(t.mappings)
}

// Compile builds a table from mapping strings split on sep.
// Parts beyond the third are ignored.
func Compile(specs []string, sep string) (*Table, error) {
	if sep == "" {
		return nil, &ConfigError{Kind: "separator", Reason: "separator must not be empty"}
	}

	table := NewTable()
	for _, spec := range specs {
		mapping, err := compileMapping(spec, sep)
		if err != nil {
			return nil, err
		}
		table.Set(mapping)
	}
	return table, nil
}

// Default compiles DefaultMappings.
func Default() *Table {
	table, err := Compile(DefaultMappings, DefaultSeparator)
	if err != nil {
		panic(fmt.Sprintf("default field mappings: %v", err))
	}
	return table
}

func compileMapping(spec, sep string) (Mapping, error) {
	parts := strings.Split(spec, sep)
	if len(parts) < 2 {
		return Mapping{}, malformed("field mapping", spec, "expected marker"+sep+"field["+sep+"part]")
	}

	mapping := Mapping{Marker: parts[0], Field: parts[1]}
	if mapping.Marker == "" {
		return Mapping{}, malformed("field mapping", spec, "empty marker name")
	}
	if mapping.Field == "" {
		return Mapping{}, malformed("field mapping", spec, "empty field name")
	}

	if len(parts) >= 3 {
		index, err := parsePart(parts[2])
		if err != nil {
			return Mapping{}, malformed("field mapping", spec, err.Error())
		}
		mapping.Part = SubPartAt(index)
	}
	return mapping, nil
}

func parsePart(raw string) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("sub-part %q is not an integer", raw)
	}
	if index < 0 {
		return 0, fmt.Errorf("sub-part %d is negative", index)
	}
	return index, nil
}
