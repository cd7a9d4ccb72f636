package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/texloader/internal/config"
	"github.com/ZebulonRouseFrantzich/texloader/internal/packages"
	"github.com/ZebulonRouseFrantzich/texloader/internal/platform"
	"github.com/ZebulonRouseFrantzich/texloader/internal/shell"
	"github.com/ZebulonRouseFrantzich/texloader/internal/transaction"
)

var (
	ErrNotInstalled      = errors.New("TinyTeX is not installed")
	ErrIncompleteInstall = errors.New("TinyTeX installation is incomplete")
)

// Fetcher downloads a release archive into targetDir and returns its path.
type Fetcher interface {
	Fetch(ctx context.Context, version string, ext platform.Ext, targetDir string) (string, error)
}

// Unpacker unpacks an archive into destDir as the distribution directory and
// removes the archive.
type Unpacker interface {
	Unpack(archivePath, destDir string, ext platform.Ext) error
}

// Bridge drives the distribution's package manager.
type Bridge interface {
	SetSysBin(ctx context.Context, dir string) error
	AddPath(ctx context.Context) error
	UpdateSelf(ctx context.Context) error
	Install(ctx context.Context, pkgs ...string) error
}

// Config wires an Installer.
type Config struct {
	Profile  Profile
	Fetcher  Fetcher
	Unpacker Unpacker
	Bridge   Bridge
	Logger   config.Logger // optional
	Clock    Clock         // optional
}

// InstallOptions selects what Install does.
type InstallOptions struct {
	Version      string
	Reinstall    bool
	NoPackages   bool
	PackagesOnly bool // overrides NoPackages
	// PackageList is a text list or Lua manifest; empty means no list file
	PackageList   string
	ExtraPackages string
}

// Installer installs and maintains one TinyTeX distribution.
type Installer struct {
	profile  Profile
	fetcher  Fetcher
	unpacker Unpacker
	bridge   Bridge
	logger   config.Logger
	clock    Clock

	state     State
	removeAll func(path string) error
}

// New creates an installer.
func New(cfg Config) (*Installer, error) {
	if cfg.Profile.Target() == "" {
		return nil, fmt.Errorf("target directory is required")
	}
	if cfg.Fetcher == nil || cfg.Unpacker == nil || cfg.Bridge == nil {
		return nil, fmt.Errorf("fetcher, unpacker and bridge are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = config.NopLogger()
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}

	return &Installer{
		profile:   cfg.Profile,
		fetcher:   cfg.Fetcher,
		unpacker:  cfg.Unpacker,
		bridge:    cfg.Bridge,
		logger:    cfg.Logger,
		clock:     cfg.Clock,
		state:     StateNotInstalled,
		removeAll: os.RemoveAll,
	}, nil
}

// State returns the last state reached.
func (i *Installer) State() State {
	return i.state
}

func (i *Installer) transition(to State) {
	i.logger.Debug("state transition", "from", i.state, "to", to)
	i.state = to
}

// Install runs the install flow selected by opts.
func (i *Installer) Install(ctx context.Context, opts InstallOptions) error {
	if opts.PackagesOnly {
		// Taking the lock creates the target, so fail first when there is nothing to update
		if err := i.requireInstalled(); err != nil {
			return err
		}
	}

	lock, err := transaction.AcquireLock(ctx, i.profile.Target())
	if err != nil {
		return err
	}
	defer lock.Release()

	wantPackages := opts.PackagesOnly || !opts.NoPackages
	var pkgs []string
	if wantPackages {
		// Read the list before downloading anything so a bad path fails fast
		pkgs, err = i.packageList(ctx, opts)
		if err != nil {
			return err
		}
	}

	if opts.PackagesOnly {
		if err := i.requireInstalled(); err != nil {
			return err
		}
		if err := i.installPackages(ctx, opts.PackageList, pkgs); err != nil {
			return err
		}
		if err := i.writeActivationScripts(); err != nil {
			return err
		}
		i.transition(StateReady)
		return nil
	}

	if err := i.ensureDistribution(ctx, opts); err != nil {
		return err
	}

	if err := i.regenerateSymlinks(ctx); err != nil {
		return err
	}

	i.logger.Info("Updating package index...")
	if err := i.bridge.UpdateSelf(ctx); err != nil {
		return fmt.Errorf("update package index: %w", err)
	}
	i.transition(StatePackagesUpdated)

	if wantPackages {
		if err := i.installPackages(ctx, opts.PackageList, pkgs); err != nil {
			return err
		}
	}

	if err := i.writeActivationScripts(); err != nil {
		return err
	}
	i.transition(StateReady)
	return nil
}

// Regenerate re-registers the bin directory, recreates the symlinks and
// re-emits the activation scripts of an existing installation.
func (i *Installer) Regenerate(ctx context.Context) error {
	if err := i.requireInstalled(); err != nil {
		return err
	}

	lock, err := transaction.AcquireLock(ctx, i.profile.Target())
	if err != nil {
		return err
	}
	defer lock.Release()

	if err := i.requireInstalled(); err != nil {
		return err
	}
	i.state = StateInstalled

	if err := i.regenerateSymlinks(ctx); err != nil {
		return err
	}
	if err := i.writeActivationScripts(); err != nil {
		return err
	}
	i.transition(StateReady)
	return nil
}

// ensureDistribution leaves a complete distribution on disk, downloading it
// unless one exists and no reinstall was requested.
func (i *Installer) ensureDistribution(ctx context.Context, opts InstallOptions) error {
	distDir := i.profile.DistributionDir()

	i.logger.Info("Checking for existing installation...")
	status, marker, err := inspectDistribution(i.profile)
	if err != nil {
		return err
	}

	switch status {
	case distributionComplete:
		if !opts.Reinstall {
			i.logger.Info("TinyTeX found, skipping installation...", "version", marker.Version)
			return nil
		}
		i.logger.Info("TinyTeX found, removing...", "dir", distDir)
	case distributionIncomplete:
		i.logger.Warn("Incomplete TinyTeX installation found, removing...", "dir", distDir)
	}

	if status != distributionMissing {
		if err := i.removeAll(distDir); err != nil {
			return fmt.Errorf("remove %s: %w", distDir, err)
		}
		i.transition(StateNotInstalled)
	}

	return i.freshInstall(ctx, opts.Version)
}

func (i *Installer) freshInstall(ctx context.Context, version string) error {
	target := i.profile.Target()
	plat := i.profile.Platform()

	if err := os.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}

	i.transition(StateDownloading)
	i.logger.Info(fmt.Sprintf("Downloading TinyTeX release %s...", version))
	archivePath, err := i.fetcher.Fetch(ctx, version, plat.Ext, target)
	if err != nil {
		return err
	}

	i.transition(StateUnpacking)
	i.logger.Info("Unpacking release archive...")
	if err := i.unpacker.Unpack(archivePath, target, plat.Ext); err != nil {
		return err
	}

	marker := Marker{
		Version:     version,
		OS:          plat.OS.String(),
		Arch:        plat.Arch,
		InstalledAt: i.clock.Now().UTC(),
	}
	if err := WriteMarker(i.profile.MarkerPath(), marker); err != nil {
		return err
	}

	i.transition(StateInstalled)
	return nil
}

// regenerateSymlinks points tlmgr at the bin directory and creates the links.
func (i *Installer) regenerateSymlinks(ctx context.Context) error {
	binDir, err := filepath.Abs(i.profile.BinDir())
	if err != nil {
		return fmt.Errorf("resolve bin directory: %w", err)
	}
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return fmt.Errorf("create bin directory: %w", err)
	}

	i.logger.Info("Regenerating symlinks...", "bin_dir", binDir)
	if err := i.bridge.SetSysBin(ctx, binDir); err != nil {
		return fmt.Errorf("register bin directory: %w", err)
	}
	if err := i.bridge.AddPath(ctx); err != nil {
		return fmt.Errorf("create symlinks: %w", err)
	}

	i.transition(StateSymlinksConfigured)
	return nil
}

func (i *Installer) packageList(ctx context.Context, opts InstallOptions) ([]string, error) {
	var list []string
	if opts.PackageList != "" {
		var err error
		list, err = packages.Load(ctx, opts.PackageList, i.profile.Platform())
		if err != nil {
			return nil, err
		}
	}
	return packages.Merge(list, packages.SplitExtra(opts.ExtraPackages)), nil
}

func (i *Installer) installPackages(ctx context.Context, source string, pkgs []string) error {
	if len(pkgs) == 0 {
		i.logger.Info("No packages to install")
		return nil
	}

	i.logger.Info(fmt.Sprintf("Installing packages from %s...", source), "count", len(pkgs))
	if err := i.bridge.Install(ctx, pkgs...); err != nil {
		return fmt.Errorf("install packages: %w", err)
	}
	return nil
}

func (i *Installer) writeActivationScripts() error {
	binDir, err := filepath.Abs(i.profile.BinDir())
	if err != nil {
		return fmt.Errorf("resolve bin directory: %w", err)
	}

	scripts, err := shell.Render(binDir)
	if err != nil {
		return err
	}

	i.logger.Info("Writing activation scripts...", "target", i.profile.Target())
	return shell.Write(i.profile.Target(), scripts)
}

func (i *Installer) requireInstalled() error {
	status, _, err := inspectDistribution(i.profile)
	if err != nil {
		return err
	}

	switch status {
	case distributionMissing:
		return fmt.Errorf("%w in %s", ErrNotInstalled, i.profile.DistributionDir())
	case distributionIncomplete:
		return fmt.Errorf("%w in %s: run install again", ErrIncompleteInstall, i.profile.DistributionDir())
	}
	i.state = StateInstalled
	return nil
}
