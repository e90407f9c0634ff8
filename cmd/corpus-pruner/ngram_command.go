package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/pruner/pkg/pruner/ingest"
	"github.com/cognicore/pruner/pkg/pruner/language"
	"github.com/cognicore/pruner/pkg/pruner/ngram"
	"github.com/cognicore/pruner/pkg/pruner/prune"
)

func newNgramCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ngram",
		Short: "Manage reference n-gram models",
	}
	cmd.AddCommand(newNgramBuildCommand(ctx))
	return cmd
}

func newNgramBuildCommand(ctx *commandContext) *cobra.Command {
	var lang, source string
	var n int

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build an n-gram model from a reference text, one sentence per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd, cfg)
			if err != nil {
				return err
			}
			if lang == "" {
				lang = cfg.Language
			}
			id, err := language.Resolve(lang)
			if err != nil {
				return err
			}

			m, err := ngram.Open(id, n, ngram.Options{
				Dir:       cfg.DataDir,
				Tokenizer: ingest.NewTokenizer(),
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			if err := m.BuildFile(source); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d %d-grams to %s\n", m.Len(), m.N(), m.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Model language (defaults to the configured language)")
	cmd.Flags().IntVar(&n, "n", prune.DefaultNgramSize, "N-gram size")
	cmd.Flags().StringVar(&source, "source", "", "Reference text file")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}
