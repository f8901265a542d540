package fieldmap

import (
	"fmt"
	"strings"
	"time"
)

// Extra is a literal marker value that does not come from a contact.
type Extra struct {
	Key   string
	Value string
}

// Extras is an ordered key → value table. Setting an existing key replaces
// its value in place.
type Extras struct {
	entries []Extra
	index   map[string]int
}

// NewExtras returns an empty table.
func NewExtras() *Extras {
	return &Extras{index: make(map[string]int)}
}

// Set adds or replaces key.
func (e *Extras) Set(key, value string) {
	if i, ok := e.index[key]; ok {
		e.entries[i].Value = value
		return
	}
	e.index[key] = len(e.entries)
	e.entries = append(e.entries, Extra{Key: key, Value: value})
}

// Get returns the value for key.
func (e *Extras) Get(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	i, ok := e.index[key]
	if !ok {
		return "", false
	}
	return e.entries[i].Value, true
}

// Entries returns the extras in table order.
func (e *Extras) Entries() []Extra {
	if e == nil {
		return nil
	}
	out := make([]Extra, len(e.entries))
	copy(out, e.entries)
	return out
}

// Len returns the number of extras.
func (e *Extras) Len() int {
	if e == nil {
		return 0
	}
	return len(e.entries)
}

// Merge applies other on top of e, last wins.
func (e *Extras) Merge(other *Extras) {
	for _, extra := range other.Entries() {
		e.Set(extra.Key, extra.Value)
	}
}

// CompileExtras parses "key SEP value" strings. Only the first separator
// splits, so values may contain it (e.g. "time:12:30").
func CompileExtras(specs []string, sep string) (*Extras, error) {
	if sep == "" {
		return nil, &ConfigError{Kind: "separator", Reason: "separator must not be empty"}
	}

	extras := NewExtras()
	for _, spec := range specs {
		key, value, ok := strings.Cut(spec, sep)
		if !ok {
			return nil, malformed("extra value", spec, "expected key"+sep+"value")
		}
		if key == "" {
			return nil, malformed("extra value", spec, "empty key")
		}
		extras.Set(key, value)
	}
	return extras, nil
}

// DateExtras returns dateYear, dateMonth and dateDay for t.
func DateExtras(t time.Time) *Extras {
	extras := NewExtras()
	extras.Set("dateYear", fmt.Sprintf("%04d", t.Year()))
	extras.Set("dateMonth", fmt.Sprintf("%02d", int(t.Month())))
	extras.Set("dateDay", fmt.Sprintf("%02d", t.Day()))
	return extras
}
