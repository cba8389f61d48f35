package cli

import (
	"github.com/spf13/cobra"

	"github.com/markm-portfolio/repoindex/pkg/config"
)

// initCommand creates the command that writes a starter config file.
func (c *CLI) initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFile
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printSuccess(out, "Wrote default configuration")
			printFile(out, path)
			printNextStep(out, "Build the index", appName+" generate")
			return nil
		},
	}
}
