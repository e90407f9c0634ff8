package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognicore/pruner/pkg/pruner/language"
	"github.com/cognicore/pruner/pkg/pruner/oracle"
	"github.com/cognicore/pruner/pkg/pruner/oracle/sqlite"
)

func newOracleCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oracle",
		Short: "Manage reference word frequencies",
	}
	cmd.AddCommand(newOracleImportCommand(ctx))
	cmd.AddCommand(newOracleLanguagesCommand(ctx))
	return cmd
}

// dbPath falls back to the configured database when --db is not given.
func (c *commandContext) dbPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if cfg.Oracle.SQLite == "" {
		return "", fmt.Errorf("no database: pass --db or set oracle.sqlite in the configuration")
	}
	return cfg.Oracle.SQLite, nil
}

func newOracleImportCommand(ctx *commandContext) *cobra.Command {
	var db, lang, wordList string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a \"token count\" word list into the frequency database",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.dbPath(db)
			if err != nil {
				return err
			}
			id, err := language.Resolve(lang)
			if err != nil {
				return err
			}

			f, err := os.Open(wordList)
			if err != nil {
				return err
			}
			defer f.Close()
			counts, err := oracle.ParseWordList(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", wordList, err)
			}

			st, err := sqlite.Open(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := st.ImportCounts(cmd.Context(), id, counts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d %s tokens into %s\n", n, id.Name, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&db, "db", "", "SQLite database path (defaults to oracle.sqlite)")
	cmd.Flags().StringVar(&lang, "lang", "", "Word list language")
	cmd.Flags().StringVar(&wordList, "wordlist", "", "Word list file")
	_ = cmd.MarkFlagRequired("lang")
	_ = cmd.MarkFlagRequired("wordlist")

	return cmd
}

func newOracleLanguagesCommand(ctx *commandContext) *cobra.Command {
	var db string

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the languages held in the frequency database",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.dbPath(db)
			if err != nil {
				return err
			}
			st, err := sqlite.Open(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer st.Close()

			langs, err := st.Languages(cmd.Context())
			if err != nil {
				return err
			}
			for _, l := range langs {
				fmt.Fprintln(cmd.OutOrStdout(), l)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "SQLite database path (defaults to oracle.sqlite)")
	return cmd
}
