package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPruneCommand(ctx *commandContext) *cobra.Command {
	var input, retained, excluded, report string

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Apply the configured pruning steps to a corpus",
		Long: "Apply the configured pruning steps to a corpus with one sentence per line.\n" +
			"Blank lines are empty sentences: they pass every step and are written to the\n" +
			"retained output, so output lines keep the order of the input.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := ctx.engine(cmd)
			if err != nil {
				return err
			}
			lines, err := readLines(input, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read corpus: %w", err)
			}

			p, rep, err := e.Prune(lines)
			if err != nil {
				return err
			}

			if err := writeSentences(retained, cmd.OutOrStdout(), p.Retained()); err != nil {
				return fmt.Errorf("write retained sentences: %w", err)
			}
			if excluded != "" {
				if err := writeSentences(excluded, cmd.OutOrStdout(), p.Excluded()); err != nil {
					return fmt.Errorf("write excluded sentences: %w", err)
				}
			}
			if report != "" {
				if err := writeJSONFile(report, cmd.OutOrStdout(), rep); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Retained %d of %d sentences (run %s)\n", rep.Retained, rep.Total, rep.RunID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "Corpus file, one sentence per line")
	cmd.Flags().StringVarP(&retained, "retained", "o", "-", "Where to write retained sentences")
	cmd.Flags().StringVar(&excluded, "excluded", "", "Where to write excluded sentences")
	cmd.Flags().StringVar(&report, "report", "", "Where to write the JSON run report")

	return cmd
}
