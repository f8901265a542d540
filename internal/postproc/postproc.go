// Package postproc runs an external command on each rendered file, for
// example turning letter.tex into letter.pdf.
package postproc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// FilePlaceholder is replaced by the rendered file's base name.
const FilePlaceholder = "{}"

// Command is a parsed post-processing command line.
type Command struct {
	argv []string
}

// Parse splits line on whitespace. If no argument contains FilePlaceholder,
// the file name is appended as the last argument. An empty line yields a
// disabled command.
func Parse(line string) Command {
	argv := strings.Fields(line)
	if len(argv) == 0 {
		return Command{}
	}
	if !strings.Contains(line, FilePlaceholder) {
		argv = append(argv, FilePlaceholder)
	}
	return Command{argv: argv}
}

// Enabled reports whether there is a command to run.
func (c Command) Enabled() bool {
	return len(c.argv) > 0
}

// Args returns the argument vector for file.
func (c Command) Args(file string) []string {
	base := filepath.Base(file)
	args := make([]string, len(c.argv))
	for i, arg := range c.argv {
		args[i] = strings.ReplaceAll(arg, FilePlaceholder, base)
	}
	return args
}

// String returns the command line with the placeholder.
func (c Command) String() string {
	return strings.Join(c.argv, " ")
}

// Run executes the command for file with the file's directory as working
// directory. Stdout is discarded; stderr is included in the error.
func (c Command) Run(ctx context.Context, file string) error {
	if !c.Enabled() {
		return nil
	}

	args := c.Args(file)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = filepath.Dir(file)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return fmt.Errorf("post-process command %q not found: %w", args[0], err)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("post-processing %s failed: %s: %w", file, msg, err)
	}
	return nil
}
