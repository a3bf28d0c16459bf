package cmd

import (
	"context"
	"errors"
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/logiprep/internal/screens/review"
	"github.com/abhisek/logiprep/internal/store"
	"github.com/abhisek/logiprep/internal/ui/layout"
)

var reviewCmd = &cobra.Command{
	Use:   "review [session-id]",
	Short: "Go through a finished session's answers (default: the latest session)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext(cmd)
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		rec, items, err := loadReview(ctx, d.repo, d.cfg.User, id)
		if err != nil {
			return err
		}
		onlyWrong, _ := cmd.Flags().GetBool("wrong")
		lipgloss.Fprintln(cmd.OutOrStdout(), review.Render(rec, items, onlyWrong, layout.DefaultWidth))
		return nil
	},
}

func init() {
	reviewCmd.Flags().Bool("wrong", false, "Only show questions answered incorrectly")
}

// loadReview reads a session with its answers, each joined to its question.
// An empty id picks the user's latest session.
func loadReview(ctx context.Context, repo store.Repository, userID, id string) (store.SessionRecord, []review.Item, error) {
	var rec store.SessionRecord
	if id == "" {
		recent, err := repo.RecentSessions(ctx, userID, 1)
		if err != nil {
			return rec, nil, fmt.Errorf("load sessions: %w", err)
		}
		if len(recent) == 0 {
			return rec, nil, errors.New("no sessions recorded yet")
		}
		rec = recent[0]
	} else {
		var err error
		rec, err = repo.Session(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return rec, nil, fmt.Errorf("session %s not found; 'logiprep stats' lists recent sessions", id)
		}
		if err != nil {
			return rec, nil, err
		}
	}

	attempts, err := repo.SessionAttempts(ctx, rec.ID)
	if err != nil {
		return rec, nil, fmt.Errorf("load answers: %w", err)
	}
	items := make([]review.Item, 0, len(attempts))
	for _, a := range attempts {
		it := review.Item{Attempt: a}
		q, err := repo.Question(ctx, a.QuestionID)
		switch {
		case err == nil:
			it.Question = q
		case !errors.Is(err, store.ErrNotFound):
			return rec, nil, fmt.Errorf("load question %s: %w", a.QuestionID, err)
		}
		items = append(items, it)
	}
	return rec, items, nil
}
