// Package render writes the per-contact output directories: rendered
// templates, copied include files and symlinks.
package render

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gorewood/vcfmerge/internal/contact"
	"github.com/gorewood/vcfmerge/internal/fieldmap"
)

// Options configures a Renderer. Paths are used as given.
type Options struct {
	OutputRoot  string
	Includes    []string // copied into every contact directory
	Links       []string // symlinked into every contact directory
	Templates   []string // rendered in order
	Extras      *fieldmap.Extras
	UniqueNames bool // embed the contact ID in rendered file names
	StartMarker string
	EndMarker   string
}

// Renderer builds contact directories. It keeps no state between contacts.
type Renderer struct {
	opts Options
}

// New returns a Renderer. Empty markers default to DefaultMarker.
func New(opts Options) *Renderer {
	if opts.StartMarker == "" {
		opts.StartMarker = DefaultMarker
	}
	if opts.EndMarker == "" {
		opts.EndMarker = DefaultMarker
	}
	if opts.Extras == nil {
		opts.Extras = fieldmap.NewExtras()
	}
	return &Renderer{opts: opts}
}

// Dir returns the output directory of c.
func (r *Renderer) Dir(c *contact.Contact) string {
	return filepath.Join(r.opts.OutputRoot, c.UID)
}

// Contact creates c's directory, copies includes, creates links and renders
// every template. It returns the rendered file paths in template order.
func (r *Renderer) Contact(ctx context.Context, c *contact.Contact) ([]string, error) {
	if c.UID == "" {
		return nil, errors.New("contact has no ID; cannot choose an output directory")
	}

	dir := r.Dir(c)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating contact directory %s: %w", dir, err)
	}

	for _, include := range r.opts.Includes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := copyFile(include, filepath.Join(dir, filepath.Base(include))); err != nil {
			return nil, err
		}
	}

	for _, link := range r.opts.Links {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := replaceSymlink(link, filepath.Join(dir, filepath.Base(link))); err != nil {
			return nil, err
		}
	}

	sub := NewSubstituter(r.opts.Extras, c, r.opts.StartMarker, r.opts.EndMarker)
	written := make([]string, 0, len(r.opts.Templates))
	for _, tmpl := range r.opts.Templates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dest := filepath.Join(dir, OutputName(tmpl, c.UID, r.opts.UniqueNames))
		if err := renderFile(tmpl, dest, sub); err != nil {
			return nil, err
		}
		written = append(written, dest)
	}
	return written, nil
}

func renderFile(src, dest string, sub *Substituter) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening template %s: %w", src, err)
	}
	defer in.Close() //nolint:errcheck // read-only file

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}

	buf := bufio.NewWriter(out)
	if err := RenderTemplate(buf, in, sub); err != nil {
		_ = out.Close()
		return fmt.Errorf("rendering %s: %w", src, err)
	}
	if err := buf.Flush(); err != nil {
		_ = out.Close()
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dest, err)
	}
	return nil
}

// copyFile copies src to dest, replacing dest and keeping src's permissions.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening include %s: %w", src, err)
	}
	defer in.Close() //nolint:errcheck // read-only file

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat include %s: %w", src, err)
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copying %s to %s: %w", src, dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dest, err)
	}
	return nil
}

// replaceSymlink points dest at the absolute path of target. An existing
// symlink at dest is replaced; any other existing file is an error.
func replaceSymlink(target, dest string) error {
	abs, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("resolving link target %s: %w", target, err)
	}

	info, err := os.Lstat(dest)
	switch {
	case err == nil && info.Mode()&fs.ModeSymlink != 0:
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("removing old link %s: %w", dest, err)
		}
	case err == nil:
		return fmt.Errorf("cannot link %s: %s exists and is not a symlink", target, dest)
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("stat %s: %w", dest, err)
	}

	if err := os.Symlink(abs, dest); err != nil {
		return fmt.Errorf("linking %s to %s: %w", dest, abs, err)
	}
	return nil
}
