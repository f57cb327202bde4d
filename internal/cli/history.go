package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
)

type historyOutput struct {
	AthleteID int                        `json:"athlete_id"`
	Range     history.Window             `json:"range"`
	Daily     []history.Point            `json:"daily"`
	Weekly    []history.WeekSummary      `json:"weekly"`
	Breakdown []history.SessionTypeCount `json:"breakdown"`
	Summary   history.Summary            `json:"summary"`
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid athlete id %q", s)
	}
	return id, nil
}

func newHistoryCmd(rt *env) *cobra.Command {
	var rangeFlag string
	cmd := &cobra.Command{
		Use:   "history <athlete-id>",
		Short: "Print an athlete's daily window, weekly series and session breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			w, err := rt.window(rangeFlag)
			if err != nil {
				return err
			}
			series, err := rt.svc.Series(cmd.Context(), id)
			if err != nil {
				return err
			}
			daily := series.Window(w)
			return rt.print(historyOutput{
				AthleteID: id,
				Range:     w,
				Daily:     daily,
				Weekly:    series.Weekly,
				Breakdown: series.Breakdown,
				Summary:   history.Summarize(daily),
			})
		}),
	}
	cmd.Flags().StringVar(&rangeFlag, "range", "", "Window (7d|14d|30d); defaults to default_window")
	return cmd
}

func (rt *env) window(flag string) (history.Window, error) {
	if flag == "" {
		flag = rt.cfg.DefaultWindow
	}
	return history.ParseWindow(flag)
}
