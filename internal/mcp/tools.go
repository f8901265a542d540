package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/vcfmerge/internal/contact"
	"github.com/gorewood/vcfmerge/internal/fieldmap"
	"github.com/gorewood/vcfmerge/internal/merge"
	"github.com/gorewood/vcfmerge/internal/render"
)

// --- Shared types ---

// MergeInput describes a merge run. Paths are glob patterns resolved
// against the server's working directory.
type MergeInput struct {
	Templates   []string `json:"templates"              jsonschema:"template file patterns"`
	VCards      []string `json:"vcards"                 jsonschema:"vCard file patterns"`
	Includes    []string `json:"includes,omitempty"     jsonschema:"file patterns copied into every contact directory"`
	Links       []string `json:"links,omitempty"        jsonschema:"file patterns symlinked into every contact directory"`
	Out         string   `json:"out,omitempty"          jsonschema:"output root directory (default .)"`
	Separator   string   `json:"separator,omitempty"    jsonschema:"separator used in fields, uid_fields and extras (default :)"`
	Fields      []string `json:"fields,omitempty"       jsonschema:"field mappings marker:FIELD[:part], replacing the defaults"`
	UIDFields   []string `json:"uid_fields,omitempty"   jsonschema:"unique-ID fields FIELD:part, replacing N:0 and N:1"`
	Extras      []string `json:"extras,omitempty"       jsonschema:"extra key:value substitutions"`
	ExtrasFile  string   `json:"extras_file,omitempty"  jsonschema:"KEY=VALUE file of extra substitutions"`
	MarkerStart string   `json:"marker_start,omitempty" jsonschema:"opening substitution marker (default %)"`
	MarkerEnd   string   `json:"marker_end,omitempty"   jsonschema:"closing substitution marker (default %)"`
	UniqueNames bool     `json:"unique_names,omitempty" jsonschema:"embed the contact ID in rendered file names"`
	Digraphs    bool     `json:"digraphs,omitempty"     jsonschema:"transliterate ä ö ü as ae oe ue in contact IDs"`
}

func (in MergeInput) settings(dryRun bool) merge.Settings {
	return merge.Settings{
		Templates:   in.Templates,
		VCards:      in.VCards,
		Includes:    in.Includes,
		Links:       in.Links,
		OutputRoot:  in.Out,
		Separator:   in.Separator,
		Fields:      in.Fields,
		UIDFields:   in.UIDFields,
		Extras:      in.Extras,
		ExtrasFile:  in.ExtrasFile,
		StartMarker: in.MarkerStart,
		EndMarker:   in.MarkerEnd,
		UniqueNames: in.UniqueNames,
		Digraphs:    in.Digraphs,
		DryRun:      dryRun,
	}
}

// ContactSummary is one parsed contact.
type ContactSummary struct {
	UID    string          `json:"uid"    jsonschema:"sanitized contact ID"`
	Fields []contact.Field `json:"fields" jsonschema:"extracted marker values in mapping order"`
}

// OutputSummary lists the files written for one contact.
type OutputSummary struct {
	UID   string   `json:"uid"   jsonschema:"contact ID"`
	Dir   string   `json:"dir"   jsonschema:"contact output directory"`
	Files []string `json:"files" jsonschema:"rendered template paths"`
}

// collector gathers diagnostics from a run for the tool result.
type collector struct {
	warnings []string
}

func (c *collector) Warn(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func (c *collector) Info(string, ...any) {}

func run(ctx context.Context, in MergeInput, dryRun bool, now time.Time) (*merge.Report, []string, error) {
	job, err := in.settings(dryRun).Compile(now)
	if err != nil {
		return nil, nil, err
	}
	log := &collector{}
	report, err := merge.Run(ctx, job, log)
	return report, log.warnings, err
}

func summarize(contacts []*contact.Contact) []ContactSummary {
	out := make([]ContactSummary, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, ContactSummary{UID: c.UID, Fields: c.Fields()})
	}
	return out
}

// --- Defaults tool ---

// DefaultsInput is the input for the defaults tool (no parameters needed).
type DefaultsInput struct{}

// DefaultsOutput is the output for the defaults tool.
type DefaultsOutput struct {
	Separator   string   `json:"separator"    jsonschema:"default mapping separator"`
	Fields      []string `json:"fields"       jsonschema:"default field mappings"`
	UIDFields   []string `json:"uid_fields"   jsonschema:"default unique-ID fields"`
	MarkerStart string   `json:"marker_start" jsonschema:"default opening marker"`
	MarkerEnd   string   `json:"marker_end"   jsonschema:"default closing marker"`
}

func handleDefaults() mcp.ToolHandlerFor[DefaultsInput, DefaultsOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ DefaultsInput) (*mcp.CallToolResult, DefaultsOutput, error) {
		return nil, DefaultsOutput{
			Separator:   fieldmap.DefaultSeparator,
			Fields:      append([]string(nil), fieldmap.DefaultMappings...),
			UIDFields:   append([]string(nil), fieldmap.DefaultUIDFields...),
			MarkerStart: render.DefaultMarker,
			MarkerEnd:   render.DefaultMarker,
		}, nil
	}
}

// --- Preview tool ---

// PreviewOutput is the output for the preview tool.
type PreviewOutput struct {
	Count    int              `json:"count"              jsonschema:"number of contacts"`
	Contacts []ContactSummary `json:"contacts"           jsonschema:"contacts in input order"`
	Warnings []string         `json:"warnings,omitempty" jsonschema:"non-fatal problems found in the input"`
}

func handlePreview(now func() time.Time) mcp.ToolHandlerFor[MergeInput, PreviewOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MergeInput) (*mcp.CallToolResult, PreviewOutput, error) {
		report, warnings, err := run(ctx, input, true, now())
		if err != nil {
			return nil, PreviewOutput{}, fmt.Errorf("preview: %w", err)
		}
		return nil, PreviewOutput{
			Count:    len(report.Contacts),
			Contacts: summarize(report.Contacts),
			Warnings: warnings,
		}, nil
	}
}

// --- Merge tool ---

// MergeOutput is the output for the merge tool.
type MergeOutput struct {
	Count    int             `json:"count"              jsonschema:"number of contacts rendered"`
	Outputs  []OutputSummary `json:"outputs"            jsonschema:"files written per contact"`
	Warnings []string        `json:"warnings,omitempty" jsonschema:"non-fatal problems found in the input"`
}

func handleMerge(now func() time.Time) mcp.ToolHandlerFor[MergeInput, MergeOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MergeInput) (*mcp.CallToolResult, MergeOutput, error) {
		report, warnings, err := run(ctx, input, false, now())
		if err != nil {
			return nil, MergeOutput{}, fmt.Errorf("merge: %w", err)
		}
		outputs := make([]OutputSummary, 0, len(report.Outputs))
		for _, o := range report.Outputs {
			outputs = append(outputs, OutputSummary{UID: o.UID, Dir: o.Dir, Files: o.Files})
		}
		return nil, MergeOutput{Count: len(outputs), Outputs: outputs, Warnings: warnings}, nil
	}
}
