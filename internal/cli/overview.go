package cli

import (
	"github.com/spf13/cobra"
)

func newOverviewCmd(rt *env) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Print team totals, distributions and the attention list",
		Long: `Print the aggregated overview of the roster: team totals, the progress
verdict, the performance distribution, the sport breakdown, the athletes that
need attention, the status distribution and the activity summary.

Data-quality issues found while aggregating are listed under warnings.`,
		Args: cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			return rt.print(rt.svc.Overview(cmd.Context()))
		}),
	}
}
