package uid

import (
	"fmt"

	"github.com/gorewood/vcfmerge/internal/vcard"
)

// DuplicateIdentifierError reports two contacts that sanitize to the same
// ID. IDs name output directories, so this is fatal.
type DuplicateIdentifierError struct {
	ID    string
	First vcard.Position
	Again vcard.Position
}

// Error implements the error interface.
func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("duplicate contact ID %q: record at %s collides with record at %s",
		e.ID, e.Again, e.First)
}

// MissingIdentifierError reports a contact whose unique-ID fields were all
// absent, leaving no output directory name.
type MissingIdentifierError struct {
	Pos vcard.Position
}

// Error implements the error interface.
func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("contact at %s has none of the unique-ID fields", e.Pos)
}

// Registry holds the IDs assigned during one run.
type Registry struct {
	sanitizer Sanitizer
	claimed   map[string]vcard.Position
}

// NewRegistry returns an empty registry that sanitizes with s.
func NewRegistry(s Sanitizer) *Registry {
	return &Registry{sanitizer: s, claimed: make(map[string]vcard.Position)}
}

// Claim sanitizes raw and registers it for the record at pos.
func (r *Registry) Claim(raw string, pos vcard.Position) (string, error) {
	if raw == "" {
		return "", &MissingIdentifierError{Pos: pos}
	}
	id := r.sanitizer.Sanitize(raw)
	if first, taken := r.claimed[id]; taken {
		return "", &DuplicateIdentifierError{ID: id, First: first, Again: pos}
	}
	r.claimed[id] = pos
	return id, nil
}

// Assign claims an ID for every record in order and stores it on the
// record's contact. It stops at the first missing or duplicate ID.
func (r *Registry) Assign(records []vcard.Record) error {
	for _, rec := range records {
		id, err := r.Claim(rec.RawID, rec.Pos)
		if err != nil {
			return err
		}
		rec.Contact.UID = id
	}
	return nil
}

// Len returns the number of claimed IDs.
func (r *Registry) Len() int {
	return len(r.claimed)
}
