package shell

import (
	"fmt"
	"os"
	"path/filepath"
)

// ScriptFileError reports a failure writing an activation script.
type ScriptFileError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ScriptFileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Cause)
}

func (e *ScriptFileError) Unwrap() error {
	return e.Cause
}

// Write validates the POSIX script and writes both scripts into targetDir,
// replacing any previous ones.
func Write(targetDir string, scripts Scripts) error {
	if err := Validate(scripts.Sh); err != nil {
		return err
	}

	if err := writeAtomic(filepath.Join(targetDir, ShScriptName), scripts.Sh, 0755); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(targetDir, PS1ScriptName), scripts.PS1, 0644)
}

// writeAtomic writes content to a temp file next to path and renames it over path
func writeAtomic(path, content string, mode os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".texloader-tmp-*")
	if err != nil {
		return &ScriptFileError{Path: path, Message: "failed to create temporary file", Cause: err}
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath) // Clean up on error

	if _, err := tmpFile.WriteString(content); err != nil {
		tmpFile.Close()
		return &ScriptFileError{Path: path, Message: "failed to write script", Cause: err}
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return &ScriptFileError{Path: path, Message: "failed to sync file", Cause: err}
	}

	if err := tmpFile.Close(); err != nil {
		return &ScriptFileError{Path: path, Message: "failed to close file", Cause: err}
	}

	if err := os.Chmod(tmpPath, mode); err != nil {
		return &ScriptFileError{Path: path, Message: "failed to set permissions", Cause: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return &ScriptFileError{Path: path, Message: "failed to rename temp file", Cause: err}
	}

	return nil
}
