// Package vcard scans vCard files into flat contacts.
//
// The scanner is deliberately shallow: it tracks BEGIN:VCARD / END:VCARD
// sentinels and matches content lines against literal field headers. It
// does not unfold continuation lines or decode parameters.
package vcard

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gorewood/vcfmerge/internal/contact"
	"github.com/gorewood/vcfmerge/internal/fieldmap"
)

// Record sentinels.
const (
	BeginRecord = "BEGIN:VCARD"
	EndRecord   = "END:VCARD"
)

// uidSeparator joins the pieces of a raw unique ID.
const uidSeparator = "."

// maxLineSize bounds a single content line (inline PHOTO data can be large).
const maxLineSize = 16 * 1024 * 1024

// Position locates a line in an input file.
type Position struct {
	Source string `json:"source"`
	Line   int    `json:"line"`
}

// String renders "source:line".
func (p Position) String() string {
	return fmt.Sprintf("%s:%d", p.Source, p.Line)
}

// Record is one completed vCard.
type Record struct {
	Contact *contact.Contact
	// RawID is the '.'-joined unique-ID pieces before sanitization.
	RawID string
	// Pos is the position of the record's BEGIN line.
	Pos Position
}

// Warning reports unexpected content outside of a record. It never aborts
// parsing.
type Warning struct {
	Pos  Position `json:"position"`
	Text string   `json:"text"`
}

// String renders the warning for humans.
func (w Warning) String() string {
	return fmt.Sprintf("%s: unexpected content outside of a vCard: %q", w.Pos, w.Text)
}

// Result accumulates records and warnings across files.
type Result struct {
	Records  []Record
	Warnings []Warning
}

// Contacts returns the record contacts in order.
func (r *Result) Contacts() []*contact.Contact {
	out := make([]*contact.Contact, 0, len(r.Records))
	for _, rec := range r.Records {
		out = append(out, rec.Contact)
	}
	return out
}

// Parser extracts mapped fields and unique-ID pieces from vCard text.
type Parser struct {
	mappings  []fieldmap.Mapping
	uidFields []fieldmap.UIDField
}

// NewParser returns a parser for the given mapping table and unique fields.
func NewParser(table *fieldmap.Table, uidFields []fieldmap.UIDField) *Parser {
	fields := make([]fieldmap.UIDField, len(uidFields))
	copy(fields, uidFields)
	return &Parser{mappings: table.Mappings(), uidFields: fields}
}

// scanState is either outside or inRecord.
type scanState interface {
	scanState()
}

type outside struct{}

type inRecord struct {
	record *Record
}

func (outside) scanState()  {}
func (inRecord) scanState() {}

// Parse scans one source.
func (p *Parser) Parse(source string, r io.Reader) (*Result, error) {
	result := &Result{}
	if err := p.parseInto(result, source, r); err != nil {
		return nil, err
	}
	return result, nil
}

// ParseFiles scans paths in order; records accumulate across files and the
// scan state restarts with each file.
func (p *Parser) ParseFiles(paths []string) (*Result, error) {
	result := &Result{}
	for _, path := range paths {
		if err := p.parseFile(result, path); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (p *Parser) parseFile(result *Result, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening vCard file %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck // read-only file

	return p.parseInto(result, path, file)
}

func (p *Parser) parseInto(result *Result, source string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var state scanState = outside{}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		pos := Position{Source: source, Line: lineNo}

		next, err := p.step(result, state, line, pos)
		if err != nil {
			return err
		}
		state = next
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", source, err)
	}

	if open, ok := state.(inRecord); ok {
		return &MalformedRecordError{Pos: open.record.Pos, Reason: "record is not terminated by " + EndRecord}
	}
	return nil
}

// step advances the state machine by one line.
func (p *Parser) step(result *Result, state scanState, line string, pos Position) (scanState, error) {
	switch st := state.(type) {
	case outside:
		switch line {
		case BeginRecord:
			return inRecord{record: &Record{Contact: contact.New(), Pos: pos}}, nil
		case "":
			return st, nil
		default:
			result.Warnings = append(result.Warnings, Warning{Pos: pos, Text: line})
			return st, nil
		}
	case inRecord:
		switch line {
		case EndRecord:
			result.Records = append(result.Records, *st.record)
			return outside{}, nil
		case BeginRecord:
			return nil, &MalformedRecordError{Pos: pos, Reason: "nested " + BeginRecord + " inside the record started at " + st.record.Pos.String()}
		default:
			if err := p.extract(st.record, line, pos); err != nil {
				return nil, err
			}
			return st, nil
		}
	default:
		panic(fmt.Sprintf("vcard: unknown scan state %T", state))
	}
}

// extract applies every matching mapping and unique-ID field to one line.
func (p *Parser) extract(rec *Record, line string, pos Position) error {
	header, value, ok := strings.Cut(line, ":")
	if !ok {
		return nil
	}

	for _, m := range p.mappings {
		if !m.Matches(line) {
			continue
		}
		extracted := value
		if index, set := m.Part.Index(); set {
			part, err := subPart(value, index, m.Field, pos)
			if err != nil {
				return err
			}
			extracted = part
		}
		rec.Contact.Set(m.Marker, extracted)
	}

	for _, f := range p.uidFields {
		if !f.Matches(header) {
			continue
		}
		piece, err := subPart(value, f.Part, f.Field, pos)
		if err != nil {
			return err
		}
		if rec.RawID != "" {
			rec.RawID += uidSeparator
		}
		rec.RawID += piece
	}
	return nil
}

// subPart returns the index-th ';'-delimited component of value.
func subPart(value string, index int, field string, pos Position) (string, error) {
	parts := strings.Split(value, ";")
	if index >= len(parts) {
		return "", &FieldExtractionError{Pos: pos, Field: field, Part: index, Available: len(parts)}
	}
	return parts[index], nil
}
