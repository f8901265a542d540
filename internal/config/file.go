package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFile is looked up in the working directory.
const ProjectFile = ".vcfmerge.yaml"

// globalFile is looked up in Dir().
const globalFile = "config.yaml"

// Markers holds the marker delimiters.
type Markers struct {
	Start string `yaml:"start,omitempty"`
	End   string `yaml:"end,omitempty"`
}

// File is the YAML configuration. Unset scalars leave the CLI defaults in
// place; lists are combined with the corresponding flags.
type File struct {
	Separator   string   `yaml:"separator,omitempty"`
	Markers     Markers  `yaml:"markers,omitempty"`
	Fields      []string `yaml:"fields,omitempty"`
	UIDFields   []string `yaml:"uid_fields,omitempty"`
	Extras      []string `yaml:"extras,omitempty"`
	ExtrasFile  string   `yaml:"extras_file,omitempty"`
	Out         string   `yaml:"out,omitempty"`
	Exec        string   `yaml:"exec,omitempty"`
	UniqueNames *bool    `yaml:"unique_names,omitempty"`
	Digraphs    *bool    `yaml:"digraphs,omitempty"`

	// Source is the path the file was loaded from, empty when none was found.
	Source string `yaml:"-"`
}

// Load reads the configuration. An explicit path must exist. Without one,
// ./.vcfmerge.yaml and then <Dir()>/config.yaml are tried; if neither
// exists an empty File is returned.
func Load(explicit string) (*File, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}

	candidates := []string{ProjectFile}
	if dir := Dir(); dir != "" {
		candidates = append(candidates, filepath.Join(dir, globalFile))
	}

	for _, path := range candidates {
		file, err := LoadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return file, err
	}
	return &File{}, nil
}

// LoadFile reads and parses one YAML file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	file, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	file.Source = path
	return file, nil
}

// Parse decodes YAML, rejecting unknown keys.
func Parse(data []byte) (*File, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &file, nil
}

// Marshal encodes f as YAML.
func (f *File) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}
