package cli

import (
	"github.com/spf13/cobra"

	"github.com/markm-portfolio/repoindex/pkg/pipeline"
)

// renderCommand creates the command that re-renders the index from a snapshot.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		from      string
		output    string
		templates string
		org       string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the HTML index from a saved JSON snapshot",
		Long: `Render rebuilds the index page from a snapshot written by
"repoindex generate --snapshot" without contacting GitHub. Use it to iterate on
templates and colors.`,
		Example: `  repoindex generate --snapshot site/repos.json
  repoindex render --from site/repos.json --templates ./templates`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				cfg.Output = output
			}
			if cmd.Flags().Changed("templates") {
				cfg.Templates = templates
			}
			if cmd.Flags().Changed("org") {
				cfg.Org = org
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts := c.pipelineOptions(cfg)
			// The snapshot names its own organization.
			if !cmd.Flags().Changed("org") {
				opts.Org = ""
			}

			prog := newProgress(c.Logger)
			snap, err := pipeline.RenderSnapshot(from, opts)
			if err != nil {
				return err
			}
			prog.done("Rendered index")

			out := cmd.OutOrStdout()
			printSuccess(out, "Rendered %d repositories of %s", len(snap.Repos), snap.Org)
			printFile(out, opts.Output)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "snapshot file to render (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "index file to write")
	cmd.Flags().StringVar(&templates, "templates", "", "directory with page fragment overrides")
	cmd.Flags().StringVar(&org, "org", "", "organization name shown on the page (default: the snapshot's)")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}
