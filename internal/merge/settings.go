package merge

import (
	"time"

	"github.com/gorewood/vcfmerge/internal/envfile"
	"github.com/gorewood/vcfmerge/internal/fieldmap"
	"github.com/gorewood/vcfmerge/internal/postproc"
	"github.com/gorewood/vcfmerge/internal/uid"
)

// Settings is a merge request in its textual form, as it arrives from flags,
// the config file or an MCP call.
type Settings struct {
	Templates   []string `json:"templates"`
	VCards      []string `json:"vcards"`
	Includes    []string `json:"includes,omitempty"`
	Links       []string `json:"links,omitempty"`
	OutputRoot  string   `json:"out,omitempty"`
	Separator   string   `json:"separator,omitempty"`
	Fields      []string `json:"fields,omitempty"`
	UIDFields   []string `json:"uid_fields,omitempty"`
	Extras      []string `json:"extras,omitempty"`
	ExtrasFile  string   `json:"extras_file,omitempty"`
	StartMarker string   `json:"marker_start,omitempty"`
	EndMarker   string   `json:"marker_end,omitempty"`
	UniqueNames bool     `json:"unique_names,omitempty"`
	Digraphs    bool     `json:"digraphs,omitempty"`
	Exec        string   `json:"exec,omitempty"`
	DryRun      bool     `json:"dry_run,omitempty"`
}

// Compile validates the textual settings and builds a Job. Extras are
// layered as date values for now, then the extras file, then Extras; a
// later key replaces an earlier one.
func (s Settings) Compile(now time.Time) (Job, error) {
	sep := s.Separator
	if sep == "" {
		sep = fieldmap.DefaultSeparator
	}

	mappings := fieldmap.Default()
	if len(s.Fields) > 0 {
		table, err := fieldmap.Compile(s.Fields, sep)
		if err != nil {
			return Job{}, err
		}
		mappings = table
	}

	uidFields := fieldmap.DefaultUID()
	if len(s.UIDFields) > 0 {
		fields, err := fieldmap.CompileUIDFields(s.UIDFields, sep)
		if err != nil {
			return Job{}, err
		}
		uidFields = fields
	}

	extras := fieldmap.DateExtras(now)
	if s.ExtrasFile != "" {
		pairs, err := envfile.Read(s.ExtrasFile)
		if err != nil {
			return Job{}, err
		}
		for _, p := range pairs {
			extras.Set(p.Key, p.Value)
		}
	}
	flagExtras, err := fieldmap.CompileExtras(s.Extras, sep)
	if err != nil {
		return Job{}, err
	}
	extras.Merge(flagExtras)

	return Job{
		Templates:   s.Templates,
		VCards:      s.VCards,
		Includes:    s.Includes,
		Links:       s.Links,
		OutputRoot:  s.OutputRoot,
		Mappings:    mappings,
		UIDFields:   uidFields,
		Extras:      extras,
		StartMarker: s.StartMarker,
		EndMarker:   s.EndMarker,
		UniqueNames: s.UniqueNames,
		Sanitizer:   uid.Sanitizer{Digraphs: s.Digraphs},
		PostProcess: postproc.Parse(s.Exec),
		DryRun:      s.DryRun,
	}, nil
}
