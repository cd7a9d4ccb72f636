// Package release downloads TinyTeX release archives from GitHub.
//
// # Release Layout
//
// TinyTeX publishes one archive per platform for each tag:
//
//	https://github.com/yihui/tinytex-releases/releases/download/{version}/TinyTeX-1-{version}.{ext}
//
// where ext is tar.gz (Linux, FreeBSD), tgz (macOS) or zip (Windows).
//
// # Download Guarantees
//
// A download is written to a temporary file next to its destination and
// renamed into place only when the body was read completely:
//   - non-2xx responses fail with the status code and URL
//   - a body shorter than the announced Content-Length fails
//   - a body smaller than MinArchiveSize fails
//   - the whole transfer is bounded by a client timeout
//
// There are no retries. Every failure is reported as a *NetworkError.
//
// # Usage
//
//	f := release.NewFetcher(release.Config{Progress: os.Stderr})
//	path, err := f.Fetch(ctx, "v2020.10", platform.ExtTarGz, "/opt/tex")
//	// path == "/opt/tex/tinytex.tar.gz"
package release
