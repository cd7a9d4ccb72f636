package release

import (
	"fmt"
	"time"

	"github.com/ZebulonRouseFrantzich/texloader/internal/platform"
)

const (
	// Product is the upstream distribution name used in release file names.
	Product = "TinyTeX"
	// DefaultVersion is the release tag installed when none is requested.
	DefaultVersion = "v2020.10"
	// DefaultBaseURL is the GitHub releases download prefix for TinyTeX.
	DefaultBaseURL = "https://github.com/yihui/tinytex-releases/releases/download"
	// DefaultTimeout bounds a whole download, including reading the body.
	DefaultTimeout = 30 * time.Minute
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "texloader/1.0"
	// MinArchiveSize rejects bodies too small to be a real release archive
	// (error pages, empty redirects).
	MinArchiveSize = 1024
	// archiveBase is the local file name stem for a downloaded archive.
	archiveBase = "tinytex"
)

// ReleaseName returns the upstream archive name for version and ext,
// e.g. TinyTeX-1-v2020.10.tar.gz.
func ReleaseName(version string, ext platform.Ext) string {
	return fmt.Sprintf("%s-1-%s.%s", Product, version, ext)
}

// URL returns the download URL of a release archive under baseURL.
// Pattern: {base}/{version}/TinyTeX-1-{version}.{ext}
func URL(baseURL, version string, ext platform.Ext) string {
	return fmt.Sprintf("%s/%s/%s", baseURL, version, ReleaseName(version, ext))
}

// ArchiveName returns the local file name an archive is saved under.
func ArchiveName(ext platform.Ext) string {
	return fmt.Sprintf("%s.%s", archiveBase, ext)
}

// NetworkError reports a failed release download.
type NetworkError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
