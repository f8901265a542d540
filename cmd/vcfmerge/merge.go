package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gorewood/vcfmerge/internal/config"
	"github.com/gorewood/vcfmerge/internal/merge"
	"github.com/gorewood/vcfmerge/internal/output"
)

// mergeFlags holds the command-line flags for the merge command.
type mergeFlags struct {
	templates   []string
	vcards      []string
	includes    []string
	links       []string
	out         string
	fields      []string
	uidFields   []string
	extras      []string
	extrasFile  string
	separator   string
	markerStart string
	markerEnd   string
	uniqueNames bool
	digraphs    bool
	dryRun      bool
	exec        string
	configPath  string
	verbose     bool
}

// newMergeCmd creates the merge command.
func newMergeCmd() *cobra.Command {
	flags := &mergeFlags{}

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Render templates once per vCard contact",
		Long: `Render every template once per contact found in the vCard files.

Each contact gets a directory <out>/<ID>/ where ID is derived from the
contact's N field (family name, then given name), lower-cased and reduced
to ASCII letters, digits and underscores. Markers such as %firstName% are
replaced by the contact's values; %dateYear%, %dateMonth% and %dateDay%
hold today's date.

Defaults can be stored in .vcfmerge.yaml (see 'vcfmerge init').

Examples:
  vcfmerge merge -I letter.tex -V contacts.vcf
  vcfmerge merge -I 'letters/*.tex' -V people.vcf -A logo.png -L style.sty
  vcfmerge merge -I letter.tex -V people.vcf --exec 'pdflatex -interaction=batchmode'
  vcfmerge merge -I letter.tex -V people.vcf -f 'email:EMAIL;TYPE=WORK' -e 'sender:Jane Roe'
  vcfmerge merge -I letter.tex -V people.vcf --dry-run --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMerge(cmd, flags, time.Now())
		},
	}

	cmd.Flags().StringArrayVarP(&flags.templates, "template", "I", nil, "Template file or glob (repeatable)")
	cmd.Flags().StringArrayVarP(&flags.vcards, "vcf", "V", nil, "vCard file or glob (repeatable)")
	cmd.Flags().StringArrayVarP(&flags.includes, "add", "A", nil, "File or glob copied into every contact directory (repeatable)")
	cmd.Flags().StringArrayVarP(&flags.links, "link", "L", nil, "File or glob symlinked into every contact directory (repeatable)")
	cmd.Flags().StringVarP(&flags.out, "out", "o", ".", "Output root directory")
	cmd.Flags().StringArrayVarP(&flags.fields, "field", "f", nil, "Field mapping marker:FIELD[:part], replaces the defaults (repeatable)")
	cmd.Flags().StringArrayVar(&flags.uidFields, "uid-field", nil, "Unique-ID field FIELD:part (repeatable)")
	cmd.Flags().StringArrayVarP(&flags.extras, "extra", "e", nil, "Extra substitution key:value (repeatable)")
	cmd.Flags().StringVar(&flags.extrasFile, "extras-file", "", "File of KEY=VALUE extra substitutions")
	cmd.Flags().StringVar(&flags.separator, "separator", ":", "Separator used in --field, --uid-field and --extra")
	cmd.Flags().StringVar(&flags.markerStart, "marker-start", "%", "Opening substitution marker")
	cmd.Flags().StringVar(&flags.markerEnd, "marker-end", "%", "Closing substitution marker")
	cmd.Flags().BoolVar(&flags.uniqueNames, "unique-names", false, "Embed the contact ID in rendered file names")
	cmd.Flags().BoolVar(&flags.digraphs, "digraphs", false, "Transliterate ä ö ü ß as ae oe ue ss in contact IDs")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "List contacts and their fields without writing anything")
	cmd.Flags().StringVar(&flags.exec, "exec", "", "Command run on every rendered file; {} is the file name")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Config file (default ./.vcfmerge.yaml, then the user config)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Report progress per contact on stderr")

	return cmd
}

// runMerge executes the merge command.
func runMerge(cmd *cobra.Command, flags *mergeFlags, now time.Time) error {
	printer := newPrinter(cmd).WithVerbose(flags.verbose)

	file, err := config.Load(flags.configPath)
	if err != nil {
		exitErr := output.NewUserErrorWithCause(err.Error(), err)
		printer.Error(exitErr)
		return exitErr
	}

	job, err := mergeSettings(cmd, flags, file).Compile(now)
	if err != nil {
		exitErr := classify(err)
		printer.Error(exitErr)
		return exitErr
	}

	report, err := merge.Run(cmd.Context(), job, printer)
	if err != nil {
		exitErr := classify(err)
		printer.Error(exitErr)
		return exitErr
	}

	if printer.IsJSON() {
		return printer.WriteJSON(report)
	}
	if report.DryRun {
		printContacts(printer, report)
		return nil
	}
	printOutputs(printer, report)
	return nil
}

// mergeSettings layers flags over the config file. Scalars come from the
// flag when it was set, else the file, else the flag default. Lists are
// the file's entries followed by the flag's.
func mergeSettings(cmd *cobra.Command, flags *mergeFlags, file *config.File) merge.Settings {
	changed := func(name string) bool { return cmd.Flags().Changed(name) }

	pick := func(name, flagValue, fileValue string) string {
		if changed(name) || fileValue == "" {
			return flagValue
		}
		return fileValue
	}
	pickBool := func(name string, flagValue bool, fileValue *bool) bool {
		if changed(name) || fileValue == nil {
			return flagValue
		}
		return *fileValue
	}

	return merge.Settings{
		Templates:   flags.templates,
		VCards:      flags.vcards,
		Includes:    flags.includes,
		Links:       flags.links,
		OutputRoot:  pick("out", flags.out, file.Out),
		Separator:   pick("separator", flags.separator, file.Separator),
		Fields:      concat(file.Fields, flags.fields),
		UIDFields:   concat(file.UIDFields, flags.uidFields),
		Extras:      concat(file.Extras, flags.extras),
		ExtrasFile:  pick("extras-file", flags.extrasFile, file.ExtrasFile),
		StartMarker: pick("marker-start", flags.markerStart, file.Markers.Start),
		EndMarker:   pick("marker-end", flags.markerEnd, file.Markers.End),
		UniqueNames: pickBool("unique-names", flags.uniqueNames, file.UniqueNames),
		Digraphs:    pickBool("digraphs", flags.digraphs, file.Digraphs),
		Exec:        pick("exec", flags.exec, file.Exec),
		DryRun:      flags.dryRun,
	}
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// printContacts renders a dry run: one section per contact.
func printContacts(printer *output.Printer, report *merge.Report) {
	for _, c := range report.Contacts {
		printer.Section(c.UID)
		for _, field := range c.Fields() {
			printer.KeyValue(field.Name, field.Value)
		}
	}
	printer.Println()
	printer.Print("%d contact(s), nothing written (dry run)\n", len(report.Contacts))
}

// printOutputs summarizes what was written.
func printOutputs(printer *output.Printer, report *merge.Report) {
	rows := make([][]string, 0, len(report.Outputs))
	for _, o := range report.Outputs {
		rows = append(rows, []string{o.UID, o.Dir, strconv.Itoa(len(o.Files))})
	}
	printer.Table([]string{"ID", "DIR", "FILES"}, rows)
	printer.Println()
	printer.Print("Merged %d contact(s): %s\n", len(report.Outputs), strings.Join(uids(report), ", "))
}

func uids(report *merge.Report) []string {
	out := make([]string, 0, len(report.Outputs))
	for _, o := range report.Outputs {
		out = append(out, o.UID)
	}
	return out
}
