package cmd

import (
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/logiprep/internal/report"
	"github.com/abhisek/logiprep/internal/screens/dashboard"
	"github.com/abhisek/logiprep/internal/ui/layout"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show accuracy, trend and what to study next",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, data, err := loadReport(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		lipgloss.Fprintln(cmd.OutOrStdout(), dashboard.Render(data, layout.DefaultWidth))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{statsCmd, exportCmd} {
		c.Flags().Int("sessions", 10, "Number of recent sessions to include")
	}
}

// loadReport opens the store and builds the current user's report. The
// caller closes the returned deps.
func loadReport(cmd *cobra.Command) (*deps, report.Data, error) {
	ctx := cmdContext(cmd)
	d, err := openDeps(cmd)
	if err != nil {
		return nil, report.Data{}, err
	}

	history, err := d.repo.History(ctx, d.cfg.User)
	if err != nil {
		d.Close()
		return nil, report.Data{}, fmt.Errorf("load history: %w", err)
	}
	limit, _ := cmd.Flags().GetInt("sessions")
	sessions, err := d.repo.RecentSessions(ctx, d.cfg.User, limit)
	if err != nil {
		d.Close()
		return nil, report.Data{}, fmt.Errorf("load sessions: %w", err)
	}
	return d, report.Build(d.cfg.User, history, sessions, d.cfg.UnlockThreshold, time.Now()), nil
}
