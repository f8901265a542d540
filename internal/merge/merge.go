// Package merge runs a complete mail merge: expand input patterns, parse
// vCards, assign contact IDs, then render every contact or report them in
// a dry run.
package merge

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gorewood/vcfmerge/internal/contact"
	"github.com/gorewood/vcfmerge/internal/fieldmap"
	"github.com/gorewood/vcfmerge/internal/postproc"
	"github.com/gorewood/vcfmerge/internal/render"
	"github.com/gorewood/vcfmerge/internal/uid"
	"github.com/gorewood/vcfmerge/internal/vcard"
)

// Logger receives non-fatal diagnostics. *output.Printer satisfies it.
type Logger interface {
	Warn(format string, args ...any)
	Info(format string, args ...any)
}

// NoInputFilesError reports required patterns that matched nothing.
type NoInputFilesError struct {
	Kind     string // "template" or "vCard"
	Patterns []string
}

// Error implements the error interface.
func (e *NoInputFilesError) Error() string {
	if len(e.Patterns) == 0 {
		return fmt.Sprintf("no %s files given", e.Kind)
	}
	return fmt.Sprintf("no %s files match %s", e.Kind, strings.Join(e.Patterns, ", "))
}

// Job is a compiled merge request.
type Job struct {
	Templates   []string // glob patterns
	VCards      []string // glob patterns
	Includes    []string // glob patterns
	Links       []string // glob patterns
	OutputRoot  string
	Mappings    *fieldmap.Table
	UIDFields   []fieldmap.UIDField
	Extras      *fieldmap.Extras
	StartMarker string
	EndMarker   string
	UniqueNames bool
	Sanitizer   uid.Sanitizer
	PostProcess postproc.Command
	DryRun      bool
}

// Output lists what was written for one contact.
type Output struct {
	UID   string   `json:"uid"`
	Dir   string   `json:"dir"`
	Files []string `json:"files"`
}

// Report is the result of Run.
type Report struct {
	Contacts []*contact.Contact `json:"contacts"`
	Outputs  []Output           `json:"outputs,omitempty"`
	Warnings []vcard.Warning    `json:"warnings,omitempty"`
	DryRun   bool               `json:"dry_run"`
}

// Run executes job. All IDs are assigned and checked before anything is
// written; a failure while rendering leaves earlier output in place.
func Run(ctx context.Context, job Job, log Logger) (*Report, error) {
	job = job.withDefaults()

	templates, err := expandRequired("template", job.Templates)
	if err != nil {
		return nil, err
	}
	vcards, err := expandRequired("vCard", job.VCards)
	if err != nil {
		return nil, err
	}
	includes, err := expandOptional("include", job.Includes, log)
	if err != nil {
		return nil, err
	}
	links, err := expandOptional("link", job.Links, log)
	if err != nil {
		return nil, err
	}

	parsed, err := vcard.NewParser(job.Mappings, job.UIDFields).ParseFiles(vcards)
	if err != nil {
		return nil, err
	}
	for _, w := range parsed.Warnings {
		log.Warn("%s", w)
	}

	if err := uid.NewRegistry(job.Sanitizer).Assign(parsed.Records); err != nil {
		return nil, err
	}

	report := &Report{
		Contacts: parsed.Contacts(),
		Warnings: parsed.Warnings,
		DryRun:   job.DryRun,
	}
	if job.DryRun {
		return report, nil
	}

	renderer := render.New(render.Options{
		OutputRoot:  job.OutputRoot,
		Includes:    includes,
		Links:       links,
		Templates:   templates,
		Extras:      job.Extras,
		UniqueNames: job.UniqueNames,
		StartMarker: job.StartMarker,
		EndMarker:   job.EndMarker,
	})

	for _, c := range report.Contacts {
		files, err := renderer.Contact(ctx, c)
		if err != nil {
			return report, fmt.Errorf("contact %s: %w", c.UID, err)
		}
		for _, file := range files {
			if err := job.PostProcess.Run(ctx, file); err != nil {
				return report, fmt.Errorf("contact %s: %w", c.UID, err)
			}
		}
		report.Outputs = append(report.Outputs, Output{UID: c.UID, Dir: renderer.Dir(c), Files: files})
		log.Info("%s: %d file(s) in %s", c.UID, len(files), renderer.Dir(c))
	}
	return report, nil
}

func (j Job) withDefaults() Job {
	if j.Mappings == nil || j.Mappings.Len() == 0 {
		j.Mappings = fieldmap.Default()
	}
	if len(j.UIDFields) == 0 {
		j.UIDFields = fieldmap.DefaultUID()
	}
	if j.Extras == nil {
		j.Extras = fieldmap.NewExtras()
	}
	if j.StartMarker == "" {
		j.StartMarker = render.DefaultMarker
	}
	if j.EndMarker == "" {
		j.EndMarker = render.DefaultMarker
	}
	if j.OutputRoot == "" {
		j.OutputRoot = "."
	}
	return j
}

func expandRequired(kind string, patterns []string) ([]string, error) {
	paths, err := expand(patterns)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, &NoInputFilesError{Kind: kind, Patterns: patterns}
	}
	return paths, nil
}

func expandOptional(kind string, patterns []string, log Logger) ([]string, error) {
	var all []string
	for _, pattern := range patterns {
		paths, err := expand([]string{pattern})
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			log.Warn("%s pattern %q matches no files", kind, pattern)
		}
		all = append(all, paths...)
	}
	return dedupe(all), nil
}

// expand globs every pattern in order and drops repeated paths.
func expand(patterns []string) ([]string, error) {
	var all []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, &fieldmap.ConfigError{Kind: "file pattern", Spec: pattern, Reason: err.Error()}
		}
		all = append(all, matches...)
	}
	return dedupe(all), nil
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
