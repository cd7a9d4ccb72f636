package main

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ZebulonRouseFrantzich/texloader/internal/archive"
	"github.com/ZebulonRouseFrantzich/texloader/internal/config"
	"github.com/ZebulonRouseFrantzich/texloader/internal/installer"
	"github.com/ZebulonRouseFrantzich/texloader/internal/platform"
	"github.com/ZebulonRouseFrantzich/texloader/internal/release"
	"github.com/ZebulonRouseFrantzich/texloader/internal/tlmgr"
)

// app is everything one subcommand run needs.
type app struct {
	settings  *config.Settings
	profile   installer.Profile
	logger    *log.Logger
	installer *installer.Installer
}

// newApp loads settings for cmd and wires the installer.
func newApp(cmd *cobra.Command) (*app, error) {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	settings, err := config.Load(config.LoadOptions{ConfigFile: cfgFile, Flags: cmd.Flags()})
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, Err: err}
	}

	plat, err := platform.Resolve(cmd.Context(), platform.NewDetector(), settings.OS)
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, Err: err}
	}

	stderr := cmd.ErrOrStderr()
	logger := config.NewLogger(stderr, settings.Verbose)
	profile := installer.NewProfile(plat, settings.Target, settings.BinDir)
	logger.Debug("resolved profile", "os", plat.OS, "arch", plat.Arch, "target", profile.Target(), "bin_dir", profile.BinDir())

	fetcher := release.NewFetcher(release.Config{
		BaseURL:  settings.ReleaseURL,
		Timeout:  settings.DownloadTimeout,
		Progress: progressWriter(stderr),
	})

	bridge := tlmgr.NewClient(profile.DistributionBinDir(), tlmgr.Options{
		Stdout:  cmd.OutOrStdout(),
		Stderr:  stderr,
		Windows: plat.IsWindows(),
	})

	inst, err := installer.New(installer.Config{
		Profile:  profile,
		Fetcher:  fetcher,
		Unpacker: archive.NewUnpacker(installer.Layout()),
		Bridge:   bridge,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		settings:  settings,
		profile:   profile,
		logger:    logger,
		installer: inst,
	}, nil
}

// progressWriter returns w when it is a terminal, nil otherwise.
func progressWriter(w io.Writer) io.Writer {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return w
}
