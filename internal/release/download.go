package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ZebulonRouseFrantzich/texloader/internal/platform"
)

// Config configures a Fetcher. Zero values select the defaults.
type Config struct {
	// BaseURL is the releases download prefix (default: DefaultBaseURL)
	BaseURL string
	// Timeout bounds each download (default: DefaultTimeout)
	Timeout time.Duration
	// UserAgent is sent with every request (default: DefaultUserAgent)
	UserAgent string
	// Progress receives a progress bar while downloading; nil disables it
	Progress io.Writer
}

// Fetcher downloads release archives over HTTP
type Fetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
	progress  io.Writer
}

// NewFetcher creates a new fetcher
func NewFetcher(cfg Config) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// GitHub redirects release assets to its object storage
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		progress:  cfg.Progress,
	}
}

// Fetch downloads the release archive for version and ext into targetDir and
// returns the local archive path ({targetDir}/tinytex.{ext}).
func (f *Fetcher) Fetch(ctx context.Context, version string, ext platform.Ext, targetDir string) (string, error) {
	if version == "" {
		return "", fmt.Errorf("release version is required")
	}

	url := URL(f.baseURL, version, ext)
	destPath := filepath.Join(targetDir, ArchiveName(ext))

	if err := f.DownloadToFile(ctx, url, destPath); err != nil {
		return "", err
	}

	return destPath, nil
}

// DownloadToFile downloads url to destPath. The file only appears at destPath
// once the complete body has been received.
func (f *Fetcher) DownloadToFile(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &NetworkError{URL: url, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &NetworkError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", http.StatusText(resp.StatusCode)),
		}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	// Track whether we need to clean up the temp file
	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	var dst io.Writer = tmpFile
	var bar *progressbar.ProgressBar
	if f.progress != nil {
		bar = newProgressBar(f.progress, resp.ContentLength, filepath.Base(url))
		dst = io.MultiWriter(tmpFile, bar)
	}

	written, err := io.Copy(dst, resp.Body)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return &NetworkError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.ContentLength >= 0 && written != resp.ContentLength {
		return &NetworkError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("truncated body: got %d of %d bytes", written, resp.ContentLength),
		}
	}
	if written < MinArchiveSize {
		return &NetworkError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("body too small for a release archive: %d bytes", written),
		}
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return nil
}

// IsNetworkError reports whether err is or wraps a *NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
