package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/ulikunitz/xz"
)

// testFile describes one archive entry; an empty body with a trailing slash
// in the name is a directory. A non-zero typeflag writes a link to link.
type testFile struct {
	name     string
	body     string
	mode     int64
	typeflag byte
	link     string
}

func sortedFiles(files map[string]string) []testFile {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]testFile, 0, len(names))
	for _, name := range names {
		out = append(out, testFile{name: name, body: files[name], mode: 0644})
	}
	return out
}

// writeTar writes files as a tar stream to w
func writeTar(t *testing.T, w io.Writer, files []testFile) {
	t.Helper()

	tarWriter := tar.NewWriter(w)
	for _, f := range files {
		header := &tar.Header{
			Name: f.name,
			Mode: f.mode,
			Size: int64(len(f.body)),
		}
		if f.name[len(f.name)-1] == '/' {
			header.Typeflag = tar.TypeDir
			header.Mode = 0755
			header.Size = 0
		}
		if f.typeflag != 0 {
			header.Typeflag = f.typeflag
			header.Linkname = f.link
			header.Size = 0
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			t.Fatalf("failed to write header for %s: %v", f.name, err)
		}
		if header.Size > 0 {
			if _, err := tarWriter.Write([]byte(f.body)); err != nil {
				t.Fatalf("failed to write content for %s: %v", f.name, err)
			}
		}
	}
	if err := tarWriter.Close(); err != nil {
		t.Fatalf("failed to close tar writer: %v", err)
	}
}

// createTestTarGz creates a .tar.gz archive in a fresh temp dir
func createTestTarGz(t *testing.T, name string, files []testFile) string {
	t.Helper()

	archivePath := filepath.Join(t.TempDir(), name)
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer func() { _ = archiveFile.Close() }()

	gzipWriter := gzip.NewWriter(archiveFile)
	writeTar(t, gzipWriter, files)
	if err := gzipWriter.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}

	return archivePath
}

// createTestTarXz creates a .tar.xz archive in a fresh temp dir
func createTestTarXz(t *testing.T, files []testFile) string {
	t.Helper()

	archivePath := filepath.Join(t.TempDir(), "test.tar.xz")
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer func() { _ = archiveFile.Close() }()

	xzWriter, err := xz.NewWriter(archiveFile)
	if err != nil {
		t.Fatalf("failed to create xz writer: %v", err)
	}
	writeTar(t, xzWriter, files)
	if err := xzWriter.Close(); err != nil {
		t.Fatalf("failed to close xz writer: %v", err)
	}

	return archivePath
}

// createTestZip creates a .zip archive in a fresh temp dir
func createTestZip(t *testing.T, files []testFile) string {
	t.Helper()

	archivePath := filepath.Join(t.TempDir(), "test.zip")
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer func() { _ = archiveFile.Close() }()

	zipWriter := zip.NewWriter(archiveFile)
	for _, f := range files {
		header := &zip.FileHeader{Name: f.name, Method: zip.Deflate}
		header.SetMode(os.FileMode(f.mode))
		w, err := zipWriter.CreateHeader(header)
		if err != nil {
			t.Fatalf("failed to create zip entry %s: %v", f.name, err)
		}
		if _, err := w.Write([]byte(f.body)); err != nil {
			t.Fatalf("failed to write zip entry %s: %v", f.name, err)
		}
	}
	if err := zipWriter.Close(); err != nil {
		t.Fatalf("failed to close zip writer: %v", err)
	}

	return archivePath
}

func TestExtractTarGz(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{
			name: "simple_extraction",
			files: map[string]string{
				"file1.txt": "content1",
				"file2.txt": "content2",
			},
		},
		{
			name: "nested_directories",
			files: map[string]string{
				"dir1/file1.txt":      "content1",
				"dir1/dir2/file2.txt": "content2",
				"dir3/file3.txt":      "content3",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archivePath := createTestTarGz(t, "test.tar.gz", sortedFiles(tt.files))

			destDir := t.TempDir()
			if err := NewExtractor().ExtractTarGz(archivePath, destDir); err != nil {
				t.Fatalf("extraction failed: %v", err)
			}

			assertFiles(t, destDir, tt.files)
		})
	}
}

func TestExtractTarGz_PreservesExecutableMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not preserved on windows")
	}

	archivePath := createTestTarGz(t, "test.tgz", []testFile{
		{name: "bin/tlmgr", body: "#!/bin/sh\necho hello", mode: 0755},
	})

	destDir := t.TempDir()
	if err := NewExtractor().ExtractTarGz(archivePath, destDir); err != nil {
		t.Fatalf("extraction failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(destDir, "bin", "tlmgr"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm()&0111 == 0 {
		t.Errorf("mode = %v, want executable", info.Mode().Perm())
	}
}

func TestExtractTarGz_PathTraversal(t *testing.T) {
	archivePath := createTestTarGz(t, "evil.tar.gz", []testFile{
		{name: "../escape.txt", body: "nope", mode: 0644},
	})

	destDir := filepath.Join(t.TempDir(), "dest")
	if err := NewExtractor().ExtractTarGz(archivePath, destDir); err == nil {
		t.Fatal("expected error for path traversal entry")
	}

	if _, err := os.Stat(filepath.Join(filepath.Dir(destDir), "escape.txt")); !os.IsNotExist(err) {
		t.Error("file escaped the destination directory")
	}
}

func TestExtractTarGz_Corrupt(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "corrupt.tar.gz")
	if err := os.WriteFile(archivePath, []byte("definitely not gzip"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := NewExtractor().ExtractTarGz(archivePath, t.TempDir()); err == nil {
		t.Error("expected error for corrupt archive")
	}
}

func TestExtractTarXz(t *testing.T) {
	files := map[string]string{
		"a/b.txt": "xz content",
		"c.txt":   "more",
	}
	archivePath := createTestTarXz(t, sortedFiles(files))

	destDir := t.TempDir()
	if err := NewExtractor().ExtractTarXz(archivePath, destDir); err != nil {
		t.Fatalf("extraction failed: %v", err)
	}

	assertFiles(t, destDir, files)
}

func TestExtractZip(t *testing.T) {
	files := map[string]string{
		"dir/file1.txt": "zip content 1",
		"file2.txt":     "zip content 2",
	}
	archivePath := createTestZip(t, sortedFiles(files))

	destDir := t.TempDir()
	if err := NewExtractor().ExtractZip(archivePath, destDir); err != nil {
		t.Fatalf("extraction failed: %v", err)
	}

	assertFiles(t, destDir, files)
}

func TestExtractZip_PathTraversal(t *testing.T) {
	archivePath := createTestZip(t, []testFile{{name: "../../escape.txt", body: "x", mode: 0644}})

	if err := NewExtractor().ExtractZip(archivePath, t.TempDir()); err == nil {
		t.Fatal("expected error for path traversal entry")
	}
}

func assertFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, want := range files {
		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
		if err != nil {
			t.Errorf("file %s was not extracted: %v", name, err)
			continue
		}
		if string(content) != want {
			t.Errorf("content mismatch for %s: got %q, want %q", name, content, want)
		}
	}
}

func TestLocalName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"a/b.txt", false},
		{"./", false},
		{".TinyTeX/bin/x86_64-linux/tlmgr", false},
		{"../x", true},
		{"a/../../x", true},
		{"/etc/passwd", true},
		{"", true},
	}

	for _, tc := range tests {
		_, err := localName(tc.name)
		if tc.wantErr {
			if !errors.Is(err, errIllegalPath) {
				t.Errorf("localName(%q) error = %v, want errIllegalPath", tc.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("localName(%q) unexpected error: %v", tc.name, err)
		}
	}
}

func TestExtractTarGz_SymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	tests := []struct {
		name     string
		linkname func(outside string) string
	}{
		{"absolute_target", func(outside string) string { return outside }},
		{"relative_target", func(string) string { return "../../outside" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			outside := filepath.Join(base, "outside")
			if err := os.Mkdir(outside, 0755); err != nil {
				t.Fatal(err)
			}

			archivePath := createTestTarGz(t, "evil.tar.gz", []testFile{
				{name: ".TinyTeX/", mode: 0755},
				{name: ".TinyTeX/link", typeflag: tar.TypeSymlink, link: tt.linkname(outside)},
				{name: ".TinyTeX/link/evil", body: "pwned", mode: 0644},
			})

			destDir := filepath.Join(base, "dest")
			err := NewExtractor().ExtractTarGz(archivePath, destDir)
			if !errors.Is(err, errIllegalPath) {
				t.Errorf("ExtractTarGz() error = %v, want errIllegalPath", err)
			}

			if _, err := os.Stat(filepath.Join(outside, "evil")); !os.IsNotExist(err) {
				t.Error("file written outside the destination directory")
			}
		})
	}
}

func TestExtractTarGz_WriteThroughSymlinkedParent(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	base := t.TempDir()
	outside := filepath.Join(base, "outside")
	if err := os.Mkdir(outside, 0755); err != nil {
		t.Fatal(err)
	}
	destDir := filepath.Join(base, "dest")
	if err := os.MkdirAll(destDir, 0755); err != nil {
		t.Fatal(err)
	}
	// A link already on disk must not be followed out of the root either
	if err := os.Symlink(outside, filepath.Join(destDir, "link")); err != nil {
		t.Fatal(err)
	}

	archivePath := createTestTarGz(t, "evil.tar.gz", []testFile{
		{name: "link/evil", body: "pwned", mode: 0644},
	})

	if err := NewExtractor().ExtractTarGz(archivePath, destDir); err == nil {
		t.Error("expected error writing through a symlink that leaves the destination")
	}
	if _, err := os.Stat(filepath.Join(outside, "evil")); !os.IsNotExist(err) {
		t.Error("file written outside the destination directory")
	}
}

func TestExtractTarGz_Links(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("links need privileges on windows")
	}

	archivePath := createTestTarGz(t, "links.tar.gz", []testFile{
		{name: ".TinyTeX/bin/x86_64-linux/pdftex", body: "binary", mode: 0755},
		{name: ".TinyTeX/bin/x86_64-linux/etex", typeflag: tar.TypeLink, link: ".TinyTeX/bin/x86_64-linux/pdftex"},
		{name: ".TinyTeX/bin/x86_64-linux/latex", typeflag: tar.TypeSymlink, link: "pdftex"},
	})

	destDir := t.TempDir()
	if err := NewExtractor().ExtractTarGz(archivePath, destDir); err != nil {
		t.Fatalf("extraction failed: %v", err)
	}

	assertFiles(t, destDir, map[string]string{
		".TinyTeX/bin/x86_64-linux/etex":  "binary",
		".TinyTeX/bin/x86_64-linux/latex": "binary",
	})

	target, err := os.Readlink(filepath.Join(destDir, ".TinyTeX", "bin", "x86_64-linux", "latex"))
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if target != "pdftex" {
		t.Errorf("symlink target = %q, want %q", target, "pdftex")
	}
}

func TestExtractTarGz_HardLinkEscape(t *testing.T) {
	archivePath := createTestTarGz(t, "evil.tar.gz", []testFile{
		{name: "passwd", typeflag: tar.TypeLink, link: "../../etc/passwd"},
	})

	err := NewExtractor().ExtractTarGz(archivePath, t.TempDir())
	if !errors.Is(err, errIllegalPath) {
		t.Errorf("ExtractTarGz() error = %v, want errIllegalPath", err)
	}
}

func TestExtractTarGz_UnsupportedEntry(t *testing.T) {
	archivePath := createTestTarGz(t, "fifo.tar.gz", []testFile{
		{name: ".TinyTeX/pipe", typeflag: tar.TypeFifo},
	})

	err := NewExtractor().ExtractTarGz(archivePath, t.TempDir())
	if !errors.Is(err, errUnsupportedEntry) {
		t.Errorf("ExtractTarGz() error = %v, want errUnsupportedEntry", err)
	}
}
