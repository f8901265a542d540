package fieldmap

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		sep     string
		want    []Mapping
		wantErr bool
	}{
		{
			name:  "two parts selects whole value",
			specs: []string{"email:EMAIL"},
			sep:   ":",
			want:  []Mapping{{Marker: "email", Field: "EMAIL", Part: NoSubPart()}},
		},
		{
			name:  "three parts selects sub-part",
			specs: []string{"lastName:N:0"},
			sep:   ":",
			want:  []Mapping{{Marker: "lastName", Field: "N", Part: SubPartAt(0)}},
		},
		{
			name:  "parts beyond the third are ignored",
			specs: []string{"city:ADR;TYPE=HOME:3:junk:more"},
			sep:   ":",
			want:  []Mapping{{Marker: "city", Field: "ADR;TYPE=HOME", Part: SubPartAt(3)}},
		},
		{
			name:  "custom separator",
			specs: []string{"city|ADR;TYPE=WORK|3"},
			sep:   "|",
			want:  []Mapping{{Marker: "city", Field: "ADR;TYPE=WORK", Part: SubPartAt(3)}},
		},
		{
			name:  "later marker wins and keeps position",
			specs: []string{"a:N:0", "b:EMAIL", "a:N:1"},
			sep:   ":",
			want: []Mapping{
				{Marker: "a", Field: "N", Part: SubPartAt(1)},
				{Marker: "b", Field: "EMAIL", Part: NoSubPart()},
			},
		},
		{name: "single part", specs: []string{"lonely"}, sep: ":", wantErr: true},
		{name: "empty marker", specs: []string{":N:0"}, sep: ":", wantErr: true},
		{name: "empty field", specs: []string{"x::0"}, sep: ":", wantErr: true},
		{name: "non-integer part", specs: []string{"x:N:first"}, sep: ":", wantErr: true},
		{name: "negative part", specs: []string{"x:N:-1"}, sep: ":", wantErr: true},
		{name: "empty separator", specs: []string{"x:N"}, sep: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Compile(tt.specs, tt.sep)
			if tt.wantErr {
				var cfgErr *ConfigError
				require.ErrorAs(t, err, &cfgErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, table.Mappings())
		})
	}
}

func TestCompile_ErrorMessage(t *testing.T) {
	_, err := Compile([]string{"firstName:N:1", "broken"}, ":")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed field mapping")
	assert.Contains(t, err.Error(), `"broken"`)
}

func TestDefault(t *testing.T) {
	table := Default()
	assert.Equal(t, []string{
		"firstName", "lastName", "streetAddress",
		"postalCodeAddress", "cityAddress", "countryAddress",
	}, table.Markers())

	street, ok := table.Lookup("streetAddress")
	require.True(t, ok)
	assert.Equal(t, "ADR;TYPE=HOME", street.Field)
	index, set := street.Part.Index()
	assert.True(t, set)
	assert.Equal(t, 2, index)
}

func TestMapping_Matches(t *testing.T) {
	m := Mapping{Marker: "home", Field: "ADR;TYPE=HOME"}
	assert.True(t, m.Matches("ADR;TYPE=HOME:;;Main St"))
	assert.False(t, m.Matches("ADR;TYPE=WORK:;;Main St"))
	assert.False(t, m.Matches("ADR;TYPE=HOMEOFFICE:x"))

	n := Mapping{Marker: "n", Field: "N"}
	assert.True(t, n.Matches("N:Doe;Jane"))
	assert.False(t, n.Matches("NOTE:hello"))
	assert.False(t, n.Matches("NICKNAME:jd"))
}

func TestCompileUIDFields(t *testing.T) {
	fields, err := CompileUIDFields([]string{"N:0", "EMAIL:0"}, ":")
	require.NoError(t, err)
	assert.Equal(t, []UIDField{{Field: "N", Part: 0}, {Field: "EMAIL", Part: 0}}, fields)

	for _, bad := range []string{"N", "N:0:1", ":0", "N:x", "N:-2"} {
		_, err := CompileUIDFields([]string{bad}, ":")
		var cfgErr *ConfigError
		assert.ErrorAs(t, err, &cfgErr, "spec %q", bad)
	}
}

func TestDefaultUID(t *testing.T) {
	assert.Equal(t, []UIDField{{Field: "N", Part: 0}, {Field: "N", Part: 1}}, DefaultUID())
}

func TestCompileExtras(t *testing.T) {
	extras, err := CompileExtras([]string{"sender:Jane Roe", "time:12:30", "sender:John Roe"}, ":")
	require.NoError(t, err)

	assert.Equal(t, []Extra{
		{Key: "sender", Value: "John Roe"},
		{Key: "time", Value: "12:30"},
	}, extras.Entries())

	_, err = CompileExtras([]string{"novalue"}, ":")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "extra value", cfgErr.Kind)

	_, err = CompileExtras([]string{":value"}, ":")
	assert.True(t, errors.As(err, &cfgErr))
}

func TestDateExtras(t *testing.T) {
	extras := DateExtras(time.Date(2024, time.March, 7, 9, 0, 0, 0, time.UTC))

	year, _ := extras.Get("dateYear")
	month, _ := extras.Get("dateMonth")
	day, _ := extras.Get("dateDay")
	assert.Equal(t, "2024", year)
	assert.Equal(t, "03", month)
	assert.Equal(t, "07", day)
}

func TestExtras_Merge(t *testing.T) {
	base := DateExtras(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	override, err := CompileExtras([]string{"dateYear:1999", "sender:me"}, ":")
	require.NoError(t, err)

	base.Merge(override)
	base.Merge(nil)

	year, _ := base.Get("dateYear")
	assert.Equal(t, "1999", year)
	assert.Equal(t, 4, base.Len())
	assert.Equal(t, "dateYear", base.Entries()[0].Key)
}
