package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TimAnthonyAlexander/leads/internal/enrich"
)

// newEnrichCmd creates the 'enrich' subcommand: one full batch pass over the
// source lists.
func newEnrichCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enrich",
		Short: "Run one enrichment pass over the source URL lists",
		Long: `Loads every candidate URL from the configured sources directory,
enriches and scores the new identities, and rewrites the kept and
filtered lead tables. Already-seen identities are skipped.`,

		RunE: runEnrichCommand,
	}
}

func runEnrichCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	cands := enrich.LoadCandidates(appInstance.Config().Sources.Dir, appInstance.Logger())
	stats, err := appInstance.Pipeline().Run(cmd.Context(), cands)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	fmt.Fprintln(os.Stderr, stats.Render())
	return nil
}
