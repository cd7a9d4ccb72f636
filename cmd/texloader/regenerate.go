package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func runRegenerate(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	if err := a.installer.Regenerate(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Symlinks regenerated in %s\n", SuccessStyle.Render("✓"), a.profile.BinDir())
	printActivateHint(cmd, a.profile.Target())
	return nil
}
