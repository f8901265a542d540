package main

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/gorewood/vcfmerge/internal/fieldmap"
	"github.com/gorewood/vcfmerge/internal/merge"
	"github.com/gorewood/vcfmerge/internal/output"
	"github.com/gorewood/vcfmerge/internal/uid"
	"github.com/gorewood/vcfmerge/internal/vcard"
)

func TestClassify(t *testing.T) {
	pos := vcard.Position{Source: "people.vcf", Line: 3}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"config", &fieldmap.ConfigError{Kind: "field mapping", Spec: "x", Reason: "r"}, output.ExitUserError},
		{"no input", &merge.NoInputFilesError{Kind: "template"}, output.ExitUserError},
		{"malformed", &vcard.MalformedRecordError{Pos: pos, Reason: "unterminated"}, output.ExitUserError},
		{"extraction", &vcard.FieldExtractionError{Pos: pos, Field: "N", Part: 4, Available: 2}, output.ExitUserError},
		{"missing id", &uid.MissingIdentifierError{Pos: pos}, output.ExitUserError},
		{"missing file", fmt.Errorf("reading extras: %w", os.ErrNotExist), output.ExitUserError},
		{"duplicate", fmt.Errorf("wrapped: %w", &uid.DuplicateIdentifierError{ID: "doe_jane", First: pos, Again: pos}), output.ExitConflict},
		{"filesystem", errors.New("mkdir out/doe_jane: permission denied"), output.ExitSystemError},
		{"already coded", output.NewConflictErrorWithCause("x", nil), output.ExitConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if got.Code != tt.want {
				t.Errorf("classify(%v).Code = %d, want %d", tt.err, got.Code, tt.want)
			}
			if got.Message != tt.err.Error() {
				t.Errorf("Message = %q, want %q", got.Message, tt.err.Error())
			}
		})
	}
}
