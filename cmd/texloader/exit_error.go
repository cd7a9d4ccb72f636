package main

import (
	"errors"
	"fmt"

	"github.com/ZebulonRouseFrantzich/texloader/internal/archive"
	"github.com/ZebulonRouseFrantzich/texloader/internal/release"
	"github.com/ZebulonRouseFrantzich/texloader/internal/tlmgr"
)

// Process exit codes
const (
	ExitOK      = 0
	ExitFailure = 1 // generic, configuration and filesystem errors
	ExitNetwork = 2
	ExitArchive = 3
	ExitBridge  = 4
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCodeFor maps an error returned by a command onto an exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var netErr *release.NetworkError
	if errors.As(err, &netErr) {
		return ExitNetwork
	}

	var unpackErr *archive.UnpackError
	if errors.As(err, &unpackErr) {
		return ExitArchive
	}

	var bridgeErr *tlmgr.BridgeError
	if errors.As(err, &bridgeErr) {
		return ExitBridge
	}

	return ExitFailure
}
