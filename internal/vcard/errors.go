package vcard

import "fmt"

// MalformedRecordError reports an unterminated or nested record.
type MalformedRecordError struct {
	Pos    Position
	Reason string
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed vCard at %s: %s", e.Pos, e.Reason)
}

// FieldExtractionError reports a configured sub-part beyond the number of
// ';'-delimited components of a matched value.
type FieldExtractionError struct {
	Pos       Position
	Field     string
	Part      int
	Available int
}

// Error implements the error interface.
func (e *FieldExtractionError) Error() string {
	return fmt.Sprintf("%s: field %s has %d part(s), cannot select part %d",
		e.Pos, e.Field, e.Available, e.Part)
}
