package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/texloader/internal/config"
	"github.com/ZebulonRouseFrantzich/texloader/internal/packages"
	"github.com/ZebulonRouseFrantzich/texloader/internal/release"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
)

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// execute runs the CLI with args and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		return exitCodeFor(err)
	}
	return ExitOK
}

// newRootCmd builds the command table.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "texloader",
		Short: "Install a project-local TinyTeX distribution",
		Long: TitleStyle.Render("texloader") + SubtitleStyle.Render(" - project-local TinyTeX installs") + `

texloader downloads a TinyTeX release into a target directory, links its
binaries into a bin directory with tlmgr, installs the packages your project
lists and writes activation scripts.

` + SubtitleStyle.Render("Examples:") + `
  texloader install                     Install into ./local
  texloader install -t .tex --os linux  Install the Linux build into ./.tex
  texloader regenerate --bin-dir ~/bin  Re-link binaries into another directory
  . local/activate                      Put the installed binaries on PATH`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	root.PersistentFlags().String("config", "", "settings file (YAML, TOML or JSON)")

	root.AddCommand(newInstallCmd(), newRegenerateCmd())
	return root
}

// addProfileFlags registers the flags shared by every subcommand.
func addProfileFlags(cmd *cobra.Command) {
	cmd.Flags().String("os", "", "target platform: linux, freebsd, darwin or win32 (default: detected)")
	cmd.Flags().StringP("target", "t", config.DefaultTarget, "install target directory")
	cmd.Flags().String("bin-dir", "", "directory for binary symlinks (default: <target>/bin)")
}

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Download TinyTeX, link its binaries and install packages",
		Args:  cobra.NoArgs,
		RunE:  runInstall,
	}

	addProfileFlags(cmd)
	cmd.Flags().String("tt-version", release.DefaultVersion, "TinyTeX release to install")
	cmd.Flags().Bool("tt-no-packages", false, "do not install packages from list")
	cmd.Flags().Bool("tt-packages-only", false, "only install packages from list; overrides --tt-no-packages")
	cmd.Flags().String("tt-package-list", packages.DefaultListPath, "package list (text, one per line, or .lua manifest)")
	cmd.Flags().String("tt-extra-packages", "", "comma separated extra packages to install")
	cmd.Flags().Bool("tt-reinstall", false, "remove an existing TinyTeX before installing")

	return cmd
}

func newRegenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Re-link binaries and rewrite activation scripts",
		Args:  cobra.NoArgs,
		RunE:  runRegenerate,
	}

	addProfileFlags(cmd)
	return cmd
}
