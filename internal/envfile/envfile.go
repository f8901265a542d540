// Package envfile reads KEY=VALUE files, the format vcfmerge accepts for
// bulk extra values (sender address, subject line, ...).
package envfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Pair is one KEY=VALUE line.
type Pair struct {
	Key   string
	Value string
}

// Read parses the file at path. Blank lines and '#' comments are skipped,
// and a later key does not remove an earlier one: callers apply pairs in
// order, last wins.
func Read(path string) ([]Pair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening extras file %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck // best-effort close on read-only file

	pairs, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("reading extras file %s: %w", path, err)
	}
	return pairs, nil
}

// Parse reads pairs from r.
func Parse(r io.Reader) ([]Pair, error) {
	var pairs []Pair
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := parseLine(line)
		if !ok {
			return nil, fmt.Errorf("line %d: expected KEY=VALUE, got %q", lineNo, line)
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// parseLine extracts KEY=VALUE from a line, stripping an optional export
// prefix and matching quotes around the value.
func parseLine(line string) (key, value string, ok bool) {
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}

	key = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(key), "export "))
	value = strings.TrimSpace(value)
	if key == "" {
		return "", "", false
	}

	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
	}

	return key, value, true
}
