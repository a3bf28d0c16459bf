package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/logiprep/internal/bank"
	"github.com/abhisek/logiprep/internal/question"
	"github.com/abhisek/logiprep/internal/topic"
)

var importCmd = &cobra.Command{
	Use:   "import <file-or-dir>...",
	Short: "Load questions from YAML bank files into the store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext(cmd)

		// Every file is validated before anything is written.
		banks := make([][]question.Question, len(args))
		for i, path := range args {
			qs, err := bank.Load(path)
			if err != nil {
				return err
			}
			banks[i] = qs
		}

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		var total int
		for i, qs := range banks {
			n, err := d.repo.UpsertQuestions(ctx, qs)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[i], err)
			}
			total += n
		}

		if d.cache != nil {
			if err := d.cache.Invalidate(ctx); err != nil {
				d.logger.Warn("stale question cache", "error", err)
			}
		}

		counts, err := d.repo.CountQuestions(ctx)
		if err != nil {
			return fmt.Errorf("count questions: %w", err)
		}

		out := cmd.OutOrStdout()
		for i, path := range args {
			fmt.Fprintf(out, "%s: %d questions\n", path, len(banks[i]))
		}
		fmt.Fprintf(out, "\nImported %d questions. Bank now holds:\n", total)
		for _, t := range topic.All() {
			fmt.Fprintf(out, "  %-16s %5d\n", t, counts[t])
		}
		return nil
	},
}
