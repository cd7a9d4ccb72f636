// Package shell renders and writes the activation scripts for an installed
// TinyTeX distribution.
//
// Two scripts are produced for a bin directory:
//   - activate: a POSIX shell script to be sourced (". ./activate")
//   - activate.ps1: the PowerShell equivalent
//
// Both prepend the bin directory to PATH and define a deactivate function
// that restores the previous PATH and prompt.
//
// # Idempotence
//
// Each script first calls its own deactivate in non-destructive mode, which
// restores any PATH saved by an earlier activation, and only then saves the
// current PATH and prepends the bin directory. Sourcing a script twice
// therefore leaves exactly one copy of the bin directory on PATH.
//
// # Writing
//
// Scripts are written atomically (temp file in the same directory, then
// rename) so a concurrent shell never sources a half-written file.
//
// # Example Usage
//
//	scripts, err := shell.Render("/opt/tex/bin")
//	if err != nil {
//	    return err
//	}
//	if err := shell.Write("/opt/tex", scripts); err != nil {
//	    return err
//	}
package shell
