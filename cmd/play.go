package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/logiprep/internal/screens/session"
	sess "github.com/abhisek/logiprep/internal/session"
	"github.com/abhisek/logiprep/internal/topic"
	"github.com/abhisek/logiprep/internal/ui/layout"
	"github.com/abhisek/logiprep/internal/ui/theme"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Untimed practice with the answer and explanation after each question",
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, count, err := topicFlags(cmd)
		if err != nil {
			return err
		}
		spec := sess.PracticeSpec(topics, count)
		if all, _ := cmd.Flags().GetBool("include-attempted"); all {
			spec.ExcludePreviouslyAttempted = false
		}
		return playSession(cmd, spec)
	},
}

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Untimed study of whole passages, with explanations",
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, count, err := topicFlags(cmd)
		if err != nil {
			return err
		}
		return playSession(cmd, sess.LearnSpec(topics, count))
	},
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Timed 40-question mock test in the real exam's section mix",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := sess.TestSpec()
		if d, _ := cmd.Flags().GetDuration("time-limit"); d > 0 {
			spec.TimeLimit = d
		}
		return playSession(cmd, spec)
	},
}

func init() {
	for _, c := range []*cobra.Command{practiceCmd, learnCmd} {
		c.Flags().String("topics", "", "Comma-separated topics (default: all)")
		c.Flags().Int("count", 10, "Number of questions")
	}
	practiceCmd.Flags().Bool("include-attempted", false, "Do not prefer questions you have not answered before")
	testCmd.Flags().Duration("time-limit", 0, "Override the time limit (default: one minute per question)")
}

func topicFlags(cmd *cobra.Command) ([]topic.Topic, int, error) {
	raw, _ := cmd.Flags().GetString("topics")
	topics, err := topic.ParseList(raw)
	if err != nil {
		return nil, 0, err
	}
	count, _ := cmd.Flags().GetInt("count")
	return topics, count, nil
}

// playSession assembles the questions for spec and runs the session
// screen. The session is recorded when it ends, however it ends.
func playSession(cmd *cobra.Command, spec sess.Spec) error {
	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	a, err := d.assembler().AssembleFor(ctx, spec, d.repo, d.cfg.User)
	if err != nil {
		return fmt.Errorf("assemble session: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(a.Questions) == 0 {
		return errors.New("no questions available; load a question bank with 'logiprep import'")
	}
	for _, s := range a.Underfilled {
		lipgloss.Fprintln(out, theme.Warning.Render(
			fmt.Sprintf("Only %d of %d %s questions available.", s.Selected, s.Requested, s.Topic)))
	}

	// Recording must finish even after an interrupt cancels ctx.
	recordCtx := context.WithoutCancel(ctx)
	m := sess.New(
		sess.WithUserID(d.cfg.User),
		sess.WithHook(sess.RecorderHook(recordCtx, d.recorders, d.logger)),
		sess.WithAnswerHook(sess.AnswerRecorderHook(recordCtx, d.answers, d.logger)),
	)
	if err := m.Start(spec, a.Questions); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	d.logger.Info("session started", "session_id", m.ID(), "mode", string(spec.Mode), "questions", len(a.Questions))

	err = session.Run(ctx, m, cmd.InOrStdin(), out)
	if !m.State().Terminal() {
		_ = m.Abandon()
	}
	if r, ok := m.Result(); ok {
		lipgloss.Fprintln(out, session.RenderResult(r, m.Questions(), layout.DefaultWidth))
		lipgloss.Fprintln(out, theme.Hint.Render("Review it later with 'logiprep review "+r.SessionID+"'."))
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
