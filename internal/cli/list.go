package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/markm-portfolio/repoindex/pkg/integrations/github"
	"github.com/markm-portfolio/repoindex/pkg/pipeline"
)

// listCommand creates the command that lists repositories without enriching them.
func (c *CLI) listCommand() *cobra.Command {
	var (
		org          string
		showExcluded bool
		requireToken bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the organization's repositories that would be indexed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("org") {
				cfg.Org = org
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			token, err := c.loadToken(cfg, requireToken)
			if err != nil {
				return err
			}

			runner := pipeline.NewRunner(c.newClient(cfg, token), nil, c.Logger)
			spinner := newSpinner(cmd.Context(), stderr, "Listing "+cfg.Org+" repositories...")
			spinner.Start()
			repos, excluded, err := runner.List(cmd.Context(), c.pipelineOptions(cfg))
			spinner.Stop()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, StyleTitle.Render(cfg.Org))
			printRepos(out, repos)
			printStats(out, fmt.Sprintf("%d repositories", len(repos)), fmt.Sprintf("%d excluded", len(excluded)))
			if showExcluded {
				for _, name := range excluded {
					printDetail(out, "excluded %s", name)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "GitHub organization to list")
	cmd.Flags().BoolVar(&showExcluded, "show-excluded", false, "also print the names dropped by the exclusion filter")
	cmd.Flags().BoolVar(&requireToken, "require-token", false, "fail when no GitHub token is configured")

	return cmd
}

// printRepos prints one "name  ⭐ stars" line per repository in listing order.
func printRepos(w io.Writer, repos []*github.Repo) {
	width := 0
	for _, r := range repos {
		width = max(width, len(r.Name))
	}
	for _, r := range repos {
		fmt.Fprintf(w, "%-*s  %s\n", width, r.Name, StyleDim.Render(fmt.Sprintf("⭐ %d", r.Stars)))
	}
}
