// Package archive unpacks a downloaded TinyTeX release into its target
// directory and renames the unpacked tree to its canonical name.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/texloader/internal/platform"
)

// Layout names the top-level directory a release unpacks to and the name it
// is renamed to.
type Layout struct {
	// TopLevel is the directory the archive contains, e.g. ".TinyTeX"
	TopLevel string
	// Name is the canonical directory name below the destination, e.g. "tinytex"
	Name string
}

// UnpackError reports a corrupt archive, an unexpected layout or an
// unsupported extension.
type UnpackError struct {
	Archive string
	Message string
	Err     error
}

func (e *UnpackError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unpack %s: %s: %v", e.Archive, e.Message, e.Err)
	}
	return fmt.Sprintf("unpack %s: %s", e.Archive, e.Message)
}

func (e *UnpackError) Unwrap() error {
	return e.Err
}

// Unpacker extracts release archives
type Unpacker struct {
	layout    Layout
	extractor *Extractor
}

// NewUnpacker creates an unpacker for the given layout
func NewUnpacker(layout Layout) *Unpacker {
	return &Unpacker{
		layout:    layout,
		extractor: NewExtractor(),
	}
}

// Unpack extracts archivePath into destDir and renames the unpacked top-level
// directory to destDir/{Name}. The archive is removed afterwards whether or
// not extraction succeeded.
//
// Extraction happens in a staging directory inside destDir, so a corrupt
// archive or a missing top-level directory leaves destDir as it was.
func (u *Unpacker) Unpack(archivePath, destDir string, ext platform.Ext) error {
	unpackErr := u.unpack(archivePath, destDir, ext)
	removeErr := RemoveArchive(archivePath)
	return errors.Join(unpackErr, removeErr)
}

func (u *Unpacker) unpack(archivePath, destDir string, ext platform.Ext) error {
	finalDir := filepath.Join(destDir, u.layout.Name)
	if _, err := os.Lstat(finalDir); err == nil {
		return &UnpackError{Archive: archivePath, Message: fmt.Sprintf("destination %s already exists", finalDir)}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", finalDir, err)
	}

	extract, err := u.extractFunc(ext)
	if err != nil {
		return &UnpackError{Archive: archivePath, Message: "unsupported archive", Err: err}
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	staging, err := os.MkdirTemp(destDir, ".unpack-")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := extract(archivePath, staging); err != nil {
		return &UnpackError{Archive: archivePath, Message: "extract", Err: err}
	}

	unpacked := filepath.Join(staging, u.layout.TopLevel)
	info, err := os.Stat(unpacked)
	if err != nil || !info.IsDir() {
		return &UnpackError{
			Archive: archivePath,
			Message: fmt.Sprintf("expected top-level directory %q not found", u.layout.TopLevel),
		}
	}

	if err := os.Rename(unpacked, finalDir); err != nil {
		return fmt.Errorf("rename %s to %s: %w", u.layout.TopLevel, finalDir, err)
	}

	return nil
}

func (u *Unpacker) extractFunc(ext platform.Ext) (func(string, string) error, error) {
	switch ext {
	case platform.ExtTarGz, platform.ExtTgz:
		return u.extractor.ExtractTarGz, nil
	case platform.ExtTarXz:
		return u.extractor.ExtractTarXz, nil
	case platform.ExtZip:
		return u.extractor.ExtractZip, nil
	default:
		return nil, fmt.Errorf("unsupported extension %q", ext)
	}
}

// RemoveArchive deletes a downloaded archive. An archive that is already gone
// is not an error.
func RemoveArchive(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove archive: %w", err)
	}
	return nil
}
