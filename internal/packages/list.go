// Package packages reads the list of TeX Live packages to install.
//
// A list is either a plain text file with one package name per line or, when
// the path ends in ".lua", a sandboxed Lua manifest that assigns a global
// "packages" array and may consult the read-only "platform" table.
package packages

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZebulonRouseFrantzich/texloader/internal/platform"
)

// DefaultListPath is the package list read when none is given.
const DefaultListPath = "packages.txt"

// ListError reports a package list that could not be read or evaluated.
type ListError struct {
	Path    string
	Message string
	Err     error
}

func (e *ListError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("package list %s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("package list %s: %s", e.Path, e.Message)
}

func (e *ListError) Unwrap() error {
	return e.Err
}

// Load reads the package list at path. Lua manifests are evaluated for p.
func Load(ctx context.Context, path string, p platform.Platform) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".lua") {
		return LoadManifest(ctx, path, p)
	}
	return Read(path)
}

// Read reads a plain text package list. Names are trimmed and blank lines
// skipped; order and duplicates are kept.
func Read(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ListError{Path: path, Message: "cannot open", Err: err}
	}
	defer f.Close()

	var pkgs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		pkgs = append(pkgs, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ListError{Path: path, Message: "read failed", Err: err}
	}

	return pkgs, nil
}

// SplitExtra splits a comma separated list of extra packages. Entries are
// trimmed and empty entries dropped.
func SplitExtra(csv string) []string {
	var pkgs []string
	for _, part := range strings.Split(csv, ",") {
		if name := strings.TrimSpace(part); name != "" {
			pkgs = append(pkgs, name)
		}
	}
	return pkgs
}

// Merge returns list followed by extra.
func Merge(list, extra []string) []string {
	out := make([]string, 0, len(list)+len(extra))
	out = append(out, list...)
	return append(out, extra...)
}
