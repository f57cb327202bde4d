package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/M3kko/nolimit-dashboard/internal/domain/athlete"
	"github.com/M3kko/nolimit-dashboard/internal/domain/classify"
)

type athleteRow struct {
	athlete.Athlete
	ProgressLevel classify.Level `json:"progress_level"`
	SessionsLoad  classify.Load  `json:"sessions_load"`
}

func newAthletesCmd(rt *env) *cobra.Command {
	var q struct {
		search, sport, status, sort string
	}
	cmd := &cobra.Command{
		Use:   "athletes",
		Short: "List the roster with filters and sorting",
		Long: `List roster athletes. Search matches names case-insensitively; sport and
status filter exactly, and "all" disables a filter. Names sort ascending,
progress and sessions sort descending.`,
		Args: cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			sortKey, err := athlete.ParseSortKey(q.sort)
			if err != nil {
				return err
			}
			if q.status != "" && !strings.EqualFold(q.status, athlete.All) {
				if _, err := athlete.ParseStatus(q.status); err != nil {
					return err
				}
			}
			view := athlete.Apply(rt.svc.Roster(cmd.Context()), athlete.Query{
				Search: q.search,
				Sport:  q.sport,
				Status: q.status,
				Sort:   sortKey,
			})
			rows := make([]athleteRow, 0, len(view))
			for _, a := range view {
				rows = append(rows, athleteRow{
					Athlete:       a,
					ProgressLevel: classify.ProgressLevel(a.WeeklyProgress),
					SessionsLoad:  classify.SessionsLoad(a.Sessions),
				})
			}
			return rt.print(rows)
		}),
	}
	cmd.Flags().StringVar(&q.search, "search", "", "Case-insensitive name search")
	cmd.Flags().StringVar(&q.sport, "sport", "", "Sport filter")
	cmd.Flags().StringVar(&q.status, "status", "", "Status filter (active|recovery|injury)")
	cmd.Flags().StringVar(&q.sort, "sort", "name", "Sort key (name|progress|sessions)")
	return cmd
}
