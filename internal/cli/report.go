package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/M3kko/nolimit-dashboard/internal/domain/export"
)

type reportOutput struct {
	Job   string `json:"job"`
	File  string `json:"file"`
	Pages int    `json:"pages"`
	Bytes int    `json:"bytes"`
}

func newReportCmd(rt *env) *cobra.Command {
	var (
		rangeFlag string
		chart     bool
		notes     []string
		outDir    string
	)
	cmd := &cobra.Command{
		Use:   "report <athlete-id>",
		Short: "Write an athlete medical report as PDF",
		Long: `Compose the athlete medical report and write it to the output directory
under its standard name, <name>_medical_report_<YYYY-MM-DD>.pdf.

Without --note the report carries notes describing the window. With --chart
the trend chart is rasterized by the configured renderer.`,
		Args: cobra.ExactArgs(1),
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			w, err := rt.window(rangeFlag)
			if err != nil {
				return err
			}
			job, data, err := rt.svc.ExportNow(cmd.Context(), export.Request{
				AthleteID:    id,
				Window:       w,
				IncludeChart: chart,
				Notes:        notes,
			})
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			path := filepath.Join(outDir, job.FileName)
			if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // reports are not secret
				return fmt.Errorf("write report: %w", err)
			}
			return rt.print(reportOutput{Job: job.ID, File: path, Pages: job.Pages, Bytes: len(data)})
		}),
	}
	cmd.Flags().StringVar(&rangeFlag, "range", "", "Window (7d|14d|30d); defaults to default_window")
	cmd.Flags().BoolVar(&chart, "chart", false, "Include the trend chart")
	cmd.Flags().StringArrayVar(&notes, "note", nil, "Clinical note; repeat for several")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	return cmd
}
