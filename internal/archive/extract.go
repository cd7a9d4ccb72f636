package archive

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// Extractor handles archive extraction. Every entry is written through an
// os.Root opened on the destination, so neither an entry name nor a symlink
// created by an earlier entry can reach outside it.
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractTarGz extracts a gzip-compressed tarball (.tar.gz, .tgz) to destDir
func (e *Extractor) ExtractTarGz(archivePath, destDir string) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	gzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	return e.extractTar(tar.NewReader(gzipReader), destDir)
}

// ExtractTarXz extracts an xz-compressed tarball (.tar.xz) to destDir
func (e *Extractor) ExtractTarXz(archivePath, destDir string) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	xzReader, err := xz.NewReader(archiveFile)
	if err != nil {
		return fmt.Errorf("create xz reader: %w", err)
	}

	return e.extractTar(tar.NewReader(xzReader), destDir)
}

// extractTar writes every entry of tarReader below destDir
func (e *Extractor) extractTar(tarReader *tar.Reader, destDir string) error {
	root, err := openRoot(destDir)
	if err != nil {
		return err
	}
	defer root.Close()

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		name, err := localName(header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if name == "." {
				continue
			}
			if err := root.MkdirAll(name, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", name, err)
			}

		case tar.TypeReg:
			if err := writeFile(root, name, tarReader, os.FileMode(header.Mode).Perm()); err != nil {
				return err
			}

		case tar.TypeSymlink:
			if err := symlinkTargetLocal(name, header.Linkname); err != nil {
				return err
			}
			if err := mkdirParent(root, name); err != nil {
				return err
			}
			if err := root.Symlink(header.Linkname, name); err != nil {
				return fmt.Errorf("create symlink %s: %w", name, err)
			}

		case tar.TypeLink:
			// Hard link names are relative to the archive root
			oldname, err := localName(header.Linkname)
			if err != nil {
				return err
			}
			if err := mkdirParent(root, name); err != nil {
				return err
			}
			if err := root.Link(oldname, name); err != nil {
				return fmt.Errorf("create hard link %s: %w", name, err)
			}

		case tar.TypeXGlobalHeader:
			continue

		default:
			return fmt.Errorf("%w: %s has unsupported type %q", errUnsupportedEntry, header.Name, header.Typeflag)
		}
	}

	return nil
}

// ExtractZip extracts a .zip archive to destDir
func (e *Extractor) ExtractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open zip archive: %w", err)
	}
	defer reader.Close()

	root, err := openRoot(destDir)
	if err != nil {
		return err
	}
	defer root.Close()

	for _, f := range reader.File {
		name, err := localName(f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if name == "." {
				continue
			}
			if err := root.MkdirAll(name, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", name, err)
			}
			continue
		}

		mode := f.Mode().Perm()
		if mode == 0 {
			// Zips written on Windows carry no unix permissions
			mode = 0644
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open %s in zip: %w", f.Name, err)
		}
		err = writeFile(root, name, rc, mode)
		rc.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

func openRoot(destDir string) (*os.Root, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("create dest dir: %w", err)
	}
	root, err := os.OpenRoot(destDir)
	if err != nil {
		return nil, fmt.Errorf("open dest dir: %w", err)
	}
	return root, nil
}

func mkdirParent(root *os.Root, name string) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := root.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create parent dir for %s: %w", name, err)
		}
	}
	return nil
}

// writeFile creates name (and its parent) below root with mode and copies r into it
func writeFile(root *os.Root, name string, r io.Reader, mode os.FileMode) error {
	if err := mkdirParent(root, name); err != nil {
		return err
	}

	outFile, err := root.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create file %s: %w", name, err)
	}

	if _, err := io.Copy(outFile, r); err != nil {
		outFile.Close()
		return fmt.Errorf("write file %s: %w", name, err)
	}

	if err := outFile.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", name, err)
	}
	return nil
}

var (
	// errIllegalPath marks archive entries that would escape the destination
	errIllegalPath = errors.New("illegal file path")
	// errUnsupportedEntry marks tar entries that cannot be materialised
	errUnsupportedEntry = errors.New("unsupported archive entry")
)

// localName converts an archive entry name into a path relative to the
// destination, rejecting absolute names and ".." traversal.
func localName(name string) (string, error) {
	local := filepath.FromSlash(path.Clean(name))
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %s", errIllegalPath, name)
	}
	return local, nil
}

// symlinkTargetLocal rejects a symlink at name whose target is absolute or
// resolves outside the destination.
func symlinkTargetLocal(name, linkname string) error {
	if linkname == "" || path.IsAbs(linkname) || filepath.IsAbs(linkname) {
		return fmt.Errorf("%w: symlink %s -> %s", errIllegalPath, name, linkname)
	}
	resolved := filepath.Join(filepath.Dir(name), filepath.FromSlash(linkname))
	if !filepath.IsLocal(resolved) {
		return fmt.Errorf("%w: symlink %s -> %s", errIllegalPath, name, linkname)
	}
	return nil
}
