package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gorewood/vcfmerge/internal/contact"
	"github.com/gorewood/vcfmerge/internal/fieldmap"
)

// DefaultMarker delimits markers on both sides: %name%.
const DefaultMarker = "%"

// Substituter replaces markers in a line with contact and extra values.
type Substituter struct {
	replacer *strings.Replacer
}

// NewSubstituter builds the marker table for one contact. A contact field
// shadows an extra with the same name. Replacement is a single
// left-to-right pass, so inserted values are never scanned for markers.
func NewSubstituter(extras *fieldmap.Extras, c *contact.Contact, start, end string) *Substituter {
	fields := c.Fields()
	pairs := make([]string, 0, 2*(len(fields)+extras.Len()))

	// strings.Replacer prefers earlier pairs when several match at the
	// same position, so contact fields go first.
	for _, f := range fields {
		pairs = append(pairs, start+f.Name+end, f.Value)
	}
	for _, e := range extras.Entries() {
		pairs = append(pairs, start+e.Key+end, e.Value)
	}
	return &Substituter{replacer: strings.NewReplacer(pairs...)}
}

// Line substitutes every known marker in line. Unknown markers are kept.
func (s *Substituter) Line(line string) string {
	return s.replacer.Replace(line)
}

// RenderTemplate copies r to w line by line, substituting markers.
// Line endings, including a missing final newline, are preserved.
func RenderTemplate(w io.Writer, r io.Reader, sub *Substituter) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			if _, werr := io.WriteString(w, sub.Line(line)); werr != nil {
				return fmt.Errorf("writing rendered line: %w", werr)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading template: %w", err)
		}
	}
}

// OutputName returns the file name a template renders to. With unique set,
// the ID is inserted before the last extension: letter.tex → letter.<id>.tex.
func OutputName(templatePath, id string, unique bool) string {
	name := filepath.Base(templatePath)
	if !unique {
		return name
	}
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return name + "." + id
	}
	return name[:dot] + "." + id + name[dot:]
}
