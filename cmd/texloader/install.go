package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/texloader/internal/installer"
	"github.com/ZebulonRouseFrantzich/texloader/internal/shell"
)

func runInstall(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	s := a.settings
	err = a.installer.Install(cmd.Context(), installer.InstallOptions{
		Version:       s.Version,
		Reinstall:     s.Reinstall,
		NoPackages:    s.NoPackages,
		PackagesOnly:  s.PackagesOnly,
		PackageList:   s.PackageList,
		ExtraPackages: s.ExtraPackages,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if s.PackagesOnly {
		fmt.Fprintln(out, SuccessStyle.Render("✓")+" Packages installed")
		printActivateHint(cmd, a.profile.Target())
		return nil
	}
	fmt.Fprintf(out, "%s TinyTeX %s ready in %s\n", SuccessStyle.Render("✓"), s.Version, a.profile.Target())
	printActivateHint(cmd, a.profile.Target())
	return nil
}

func printActivateHint(cmd *cobra.Command, target string) {
	fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("Activate with: ")+
		CmdStyle.Render(". "+filepath.Join(target, shell.ShScriptName)))
}
