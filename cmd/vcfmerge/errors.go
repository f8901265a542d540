package main

import (
	"errors"
	"io/fs"

	"github.com/gorewood/vcfmerge/internal/fieldmap"
	"github.com/gorewood/vcfmerge/internal/merge"
	"github.com/gorewood/vcfmerge/internal/output"
	"github.com/gorewood/vcfmerge/internal/uid"
	"github.com/gorewood/vcfmerge/internal/vcard"
)

// classify maps pipeline errors onto exit codes. Errors that already carry
// a code pass through unchanged.
func classify(err error) *output.ExitError {
	var exitErr *output.ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	var (
		cfgErr     *fieldmap.ConfigError
		noInput    *merge.NoInputFilesError
		malformed  *vcard.MalformedRecordError
		extraction *vcard.FieldExtractionError
		missing    *uid.MissingIdentifierError
		duplicate  *uid.DuplicateIdentifierError
	)
	switch {
	case errors.As(err, &duplicate):
		return output.NewConflictErrorWithCause(err.Error(), err)
	case errors.As(err, &cfgErr),
		errors.As(err, &noInput),
		errors.As(err, &malformed),
		errors.As(err, &extraction),
		errors.As(err, &missing),
		errors.Is(err, fs.ErrNotExist):
		return output.NewUserErrorWithCause(err.Error(), err)
	default:
		return output.NewSystemErrorWithCause(err.Error(), err)
	}
}
