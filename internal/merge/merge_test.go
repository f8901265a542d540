package merge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorewood/vcfmerge/internal/fieldmap"
	"github.com/gorewood/vcfmerge/internal/uid"
	"github.com/gorewood/vcfmerge/internal/vcard"
)

type recordingLogger struct {
	warnings []string
	infos    []string
}

func (l *recordingLogger) Warn(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Info(format string, args ...any) {
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}

var fixedNow = time.Date(2024, time.May, 4, 12, 0, 0, 0, time.UTC)

type fixture struct {
	dir string
	out string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{dir: dir, out: filepath.Join(dir, "out")}
	f.write(t, "letter.tex", "Dear %firstName% %lastName%, %dateYear%-%dateMonth%-%dateDay% %sender%\n")
	f.write(t, "contacts.vcf",
		"BEGIN:VCARD\nN:Doe;Smith\nADR;TYPE=HOME:;;Main St;Springfield;;12345;Country\nEND:VCARD\n"+
			"BEGIN:VCARD\nN:Müller;Jörg\nADR;TYPE=HOME:;;Hauptstr. 1;Berlin;;10115;Germany\nEND:VCARD\n")
	return f
}

func (f fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (f fixture) path(name string) string {
	return filepath.Join(f.dir, name)
}

func (f fixture) settings() Settings {
	return Settings{
		Templates:  []string{f.path("*.tex")},
		VCards:     []string{f.path("*.vcf")},
		OutputRoot: f.out,
		Extras:     []string{"sender:Jane"},
	}
}

func compile(t *testing.T, s Settings) Job {
	t.Helper()
	job, err := s.Compile(fixedNow)
	require.NoError(t, err)
	return job
}

func TestRun_RendersEveryContact(t *testing.T) {
	f := newFixture(t)
	log := &recordingLogger{}

	report, err := Run(context.Background(), compile(t, f.settings()), log)
	require.NoError(t, err)

	require.Len(t, report.Contacts, 2)
	assert.Equal(t, "doe_smith", report.Contacts[0].UID)
	assert.Equal(t, "muller_jorg", report.Contacts[1].UID)
	require.Len(t, report.Outputs, 2)
	assert.Len(t, log.infos, 2)

	data, err := os.ReadFile(filepath.Join(f.out, "doe_smith", "letter.tex"))
	require.NoError(t, err)
	assert.Equal(t, "Dear Smith Doe, 2024-05-04 Jane\n", string(data))
}

func TestRun_DigraphsAndUniqueNames(t *testing.T) {
	f := newFixture(t)
	s := f.settings()
	s.Digraphs = true
	s.UniqueNames = true

	_, err := Run(context.Background(), compile(t, s), &recordingLogger{})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(f.out, "mueller_joerg", "letter.mueller_joerg.tex"))
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	f := newFixture(t)
	s := f.settings()
	s.DryRun = true

	report, err := Run(context.Background(), compile(t, s), &recordingLogger{})
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Len(t, report.Contacts, 2)
	assert.Empty(t, report.Outputs)
	assert.NoDirExists(t, f.out)
}

func TestRun_NoTemplatesAbortsBeforeParsing(t *testing.T) {
	f := newFixture(t)
	// An unterminated record would fail parsing; it must never be reached.
	f.write(t, "broken.vcf", "BEGIN:VCARD\nN:Doe;Jane\n")
	s := f.settings()
	s.Templates = []string{f.path("*.nomatch")}

	_, err := Run(context.Background(), compile(t, s), &recordingLogger{})

	var noInput *NoInputFilesError
	require.ErrorAs(t, err, &noInput)
	assert.Equal(t, "template", noInput.Kind)
}

func TestRun_NoVCards(t *testing.T) {
	f := newFixture(t)
	s := f.settings()
	s.VCards = nil

	_, err := Run(context.Background(), compile(t, s), &recordingLogger{})

	var noInput *NoInputFilesError
	require.ErrorAs(t, err, &noInput)
	assert.Equal(t, "vCard", noInput.Kind)
	assert.Equal(t, "no vCard files given", noInput.Error())
}

func TestRun_BadPattern(t *testing.T) {
	f := newFixture(t)
	s := f.settings()
	s.Templates = []string{"[unclosed"}

	_, err := Run(context.Background(), compile(t, s), &recordingLogger{})

	var cfgErr *fieldmap.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRun_DuplicateIDWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.write(t, "more.vcf", "BEGIN:VCARD\nN:Doe;Smith\nEMAIL:other@example.com\nEND:VCARD\n")

	_, err := Run(context.Background(), compile(t, f.settings()), &recordingLogger{})

	var dup *uid.DuplicateIdentifierError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "doe_smith", dup.ID)
	assert.NoDirExists(t, f.out)
}

func TestRun_WarningsAreLogged(t *testing.T) {
	f := newFixture(t)
	f.write(t, "contacts.vcf", "stray line\nBEGIN:VCARD\nN:Doe;Smith\nEND:VCARD\n")
	s := f.settings()
	s.Includes = []string{f.path("*.png")}
	s.DryRun = true

	report, err := Run(context.Background(), compile(t, s), &recordingLogger{})
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)

	log := &recordingLogger{}
	_, err = Run(context.Background(), compile(t, s), log)
	require.NoError(t, err)
	require.Len(t, log.warnings, 2)
	assert.Contains(t, log.warnings[0], "*.png")
	assert.Contains(t, log.warnings[1], "stray line")
}

func TestRun_MalformedRecord(t *testing.T) {
	f := newFixture(t)
	f.write(t, "contacts.vcf", "BEGIN:VCARD\nN:Doe;Smith\n")

	_, err := Run(context.Background(), compile(t, f.settings()), &recordingLogger{})

	var malformed *vcard.MalformedRecordError
	assert.ErrorAs(t, err, &malformed)
}

func TestRun_IncludesAndLinksExpanded(t *testing.T) {
	f := newFixture(t)
	f.write(t, "logo.png", "PNG")
	f.write(t, "style.sty", "STY")
	s := f.settings()
	s.Includes = []string{f.path("*.png"), f.path("logo.png")}
	s.Links = []string{f.path("*.sty")}

	_, err := Run(context.Background(), compile(t, s), &recordingLogger{})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(f.out, "doe_smith", "logo.png"))
	info, err := os.Lstat(filepath.Join(f.out, "doe_smith", "style.sty"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
}

func TestSettings_Compile(t *testing.T) {
	dir := t.TempDir()
	extrasFile := filepath.Join(dir, "extras.env")
	require.NoError(t, os.WriteFile(extrasFile, []byte("sender=File\nsubject=Hello\n"), 0o600))

	job, err := Settings{
		Separator:  "|",
		Fields:     []string{"who|FN"},
		UIDFields:  []string{"EMAIL|0"},
		Extras:     []string{"sender|Flag", "dateYear|1999"},
		ExtrasFile: extrasFile,
		Exec:       "pdflatex",
		Digraphs:   true,
	}.Compile(fixedNow)
	require.NoError(t, err)

	assert.Equal(t, []string{"who"}, job.Mappings.Markers())
	assert.Equal(t, []fieldmap.UIDField{{Field: "EMAIL", Part: 0}}, job.UIDFields)
	sender, _ := job.Extras.Get("sender")
	subject, _ := job.Extras.Get("subject")
	year, _ := job.Extras.Get("dateYear")
	assert.Equal(t, "Flag", sender)
	assert.Equal(t, "Hello", subject)
	assert.Equal(t, "1999", year)
	assert.True(t, job.PostProcess.Enabled())
	assert.True(t, job.Sanitizer.Digraphs)
}

func TestSettings_CompileDefaults(t *testing.T) {
	job, err := Settings{}.Compile(fixedNow)
	require.NoError(t, err)

	assert.Equal(t, fieldmap.Default().Markers(), job.Mappings.Markers())
	assert.Equal(t, fieldmap.DefaultUID(), job.UIDFields)
	assert.Equal(t, 3, job.Extras.Len())
	assert.False(t, job.PostProcess.Enabled())
}

func TestSettings_CompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
	}{
		{name: "bad mapping", settings: Settings{Fields: []string{"oops"}}},
		{name: "bad uid field", settings: Settings{UIDFields: []string{"N"}}},
		{name: "bad extra", settings: Settings{Extras: []string{"novalue"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.settings.Compile(fixedNow)
			var cfgErr *fieldmap.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}

	_, err := Settings{ExtrasFile: filepath.Join(t.TempDir(), "missing.env")}.Compile(fixedNow)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
