package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/pruner/pkg/pruner"
	"github.com/cognicore/pruner/pkg/pruner/prune"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var input string
	var limit int
	var asJSON, skipSteps bool
	var th prune.Thresholds

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show token frequency statistics of the retained sentences",
		Long: "Show token frequency statistics of the sentences retained after the configured steps.\n" +
			"Setting any --min-* flag keeps only the tokens meeting every threshold.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := ctx.engine(cmd)
			if err != nil {
				return err
			}
			lines, err := readLines(input, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read corpus: %w", err)
			}

			p := e.Pruner(e.Corpus(lines))
			if !skipSteps {
				if _, err := pruner.Run(p, e.Config().Steps); err != nil {
					return err
				}
			}

			rows := p.FrequencyStats()
			if anyChanged(cmd, "min-count", "min-zipf", "min-zipf-diff", "min-pervasiveness") {
				rows = prune.FilterPervasive(rows, th)
			}
			if limit > 0 && len(rows) > limit {
				rows = rows[:limit]
			}

			if asJSON {
				if rows == nil {
					rows = []prune.StatsRow{}
				}
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tokens")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStats(rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "Corpus file, one sentence per line")
	cmd.Flags().BoolVar(&skipSteps, "no-prune", false, "Compute statistics over the whole corpus")
	cmd.Flags().IntVar(&th.MinCount, "min-count", 0, "Minimum token count")
	cmd.Flags().Float64Var(&th.MinZipf, "min-zipf", 0, "Minimum corpus zipf value")
	cmd.Flags().Float64Var(&th.MinZipfDiff, "min-zipf-diff", 0, "Minimum corpus minus reference zipf value")
	cmd.Flags().Float64Var(&th.MinPervasiveness, "min-pervasiveness", 0, "Minimum pervasiveness")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many tokens")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}
