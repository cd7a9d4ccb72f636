package installer

import (
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/texloader/internal/archive"
	"github.com/ZebulonRouseFrantzich/texloader/internal/platform"
	"github.com/ZebulonRouseFrantzich/texloader/internal/release"
)

const (
	// DistributionName is the directory the distribution lives in below the target.
	DistributionName = "tinytex"
	// UnpackedName is the top-level directory inside every release archive.
	UnpackedName = ".TinyTeX"
)

// Layout returns the archive layout of a TinyTeX release.
func Layout() archive.Layout {
	return archive.Layout{TopLevel: UnpackedName, Name: DistributionName}
}

// Profile is the resolved, immutable description of one installation.
type Profile struct {
	platform platform.Platform
	target   string
	binDir   string
}

// NewProfile creates a profile. An empty binDir selects {target}/bin.
func NewProfile(p platform.Platform, target, binDir string) Profile {
	return Profile{platform: p, target: target, binDir: binDir}
}

// Platform returns the platform the profile installs for.
func (p Profile) Platform() platform.Platform {
	return p.platform
}

// Target returns the install target directory.
func (p Profile) Target() string {
	return p.target
}

// BinDir returns the directory tlmgr symlinks binaries into.
func (p Profile) BinDir() string {
	if p.binDir != "" {
		return p.binDir
	}
	return filepath.Join(p.target, "bin")
}

// DistributionDir returns {target}/tinytex.
func (p Profile) DistributionDir() string {
	return filepath.Join(p.target, DistributionName)
}

// DistributionBinDir returns the platform's binary directory inside the
// distribution, where tlmgr lives.
func (p Profile) DistributionBinDir() string {
	return filepath.Join(p.DistributionDir(), "bin", p.platform.Arch)
}

// ArchivePath returns where the release archive is downloaded to.
func (p Profile) ArchivePath() string {
	return filepath.Join(p.target, release.ArchiveName(p.platform.Ext))
}

// MarkerPath returns the completion marker of the distribution.
func (p Profile) MarkerPath() string {
	return filepath.Join(p.DistributionDir(), MarkerFileName)
}
