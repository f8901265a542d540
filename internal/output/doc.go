// Package output renders vcfmerge results for people and for scripts.
//
// # Printer
//
// The Printer switches between human and JSON output based on the --json
// flag. Results go to the main writer; errors, warnings and verbose progress
// go to the error writer:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonFlag, isTTY).
//		WithStderr(cmd.ErrOrStderr())
//
//	printer.Warn("line %d outside any record", n)
//	printer.Table([]string{"ID", "DIR", "FILES"}, rows)
//	printer.Error(err)
//
// In JSON mode the main writer carries exactly one document and each warning
// is a {"warning": "..."} object on the error writer.
//
// # Exit Codes
//
//	output.ExitSuccess     // 0: Success
//	output.ExitUserError   // 1: Bad flags, mapping, vCard or missing input
//	output.ExitSystemError // 2: Filesystem or post-process failure
//	output.ExitConflict    // 3: Duplicate contact ID
//
// Use the error constructors so JSON errors and the process exit code agree:
//
//	output.NewUserError("no template files match *.tex")
//	output.NewConflictErrorWithCause(err.Error(), err)
package output
