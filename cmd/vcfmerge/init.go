package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/gorewood/vcfmerge/internal/config"
	"github.com/gorewood/vcfmerge/internal/fieldmap"
	"github.com/gorewood/vcfmerge/internal/output"
	"github.com/gorewood/vcfmerge/internal/render"
)

// newInitCmd creates the init command.
func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter .vcfmerge.yaml in the current directory",
		Long: `Write a starter .vcfmerge.yaml holding the built-in defaults.

Edit it to change the field mappings, unique-ID fields, markers or extra
values used by 'vcfmerge merge' in this directory.

Examples:
  vcfmerge init           # Create .vcfmerge.yaml
  vcfmerge init --force   # Overwrite an existing file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, config.ProjectFile, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

// starterConfig returns the defaults in config file form.
func starterConfig() *config.File {
	uniqueNames, digraphs := false, false
	return &config.File{
		Separator: fieldmap.DefaultSeparator,
		Markers:   config.Markers{Start: render.DefaultMarker, End: render.DefaultMarker},
		Fields:    append([]string(nil), fieldmap.DefaultMappings...),
		UIDFields: append([]string(nil), fieldmap.DefaultUIDFields...),
		Out:       ".",

		UniqueNames: &uniqueNames,
		Digraphs:    &digraphs,
	}
}

// runInit executes the init command.
func runInit(cmd *cobra.Command, path string, force bool) error {
	printer := newPrinter(cmd)

	if !force {
		if _, err := os.Stat(path); err == nil {
			exitErr := output.NewUserError(path + " already exists (use --force to overwrite)")
			printer.Error(exitErr)
			return exitErr
		} else if !errors.Is(err, fs.ErrNotExist) {
			exitErr := output.NewSystemErrorWithCause(fmt.Sprintf("checking %s: %v", path, err), err)
			printer.Error(exitErr)
			return exitErr
		}
	}

	data, err := starterConfig().Marshal()
	if err != nil {
		exitErr := output.NewSystemErrorWithCause(err.Error(), err)
		printer.Error(exitErr)
		return exitErr
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		exitErr := output.NewSystemErrorWithCause(fmt.Sprintf("writing %s: %v", path, err), err)
		printer.Error(exitErr)
		return exitErr
	}

	return printer.Success(map[string]any{
		"message": "Wrote " + path,
		"path":    path,
	})
}
