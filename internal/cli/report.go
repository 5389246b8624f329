package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cassa/internal/report"
)

// viewResult is the JSON form of a view. Values stay in Unit; Series is the
// chart form with money in currency units.
type viewResult struct {
	Name   string    `json:"name"`
	Title  string    `json:"title"`
	Unit   string    `json:"unit"`
	Labels []string  `json:"labels"`
	Values []int64   `json:"values"`
	Series []float64 `json:"series"`
}

func newViewResult(v report.View) viewResult {
	labels, series := v.Series()
	r := viewResult{Name: v.Name, Title: v.Title, Unit: string(v.Unit), Labels: labels, Values: v.Values, Series: series}
	if r.Labels == nil {
		r.Labels = []string{}
	}
	if r.Values == nil {
		r.Values = []int64{}
	}
	return r
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report [" + strings.Join(report.ViewNames, "|") + "]",
		Short: "Print sales reports",
		Long: `Print one report view, or every view when none is named. Daily buckets
sales by hour of today, weekly by day since Sunday and monthly by day of the
current month, all in the configured time zone. Revenue is in cents.`,
		Args:          cobra.MaximumNArgs(1),
		ValidArgs:     report.ViewNames,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return withApp(cmd, rootOpts, f, func(app *App) error {
				ctx := cmd.Context()
				if len(args) == 1 {
					v, warnings, err := app.Reports.View(ctx, args[0])
					if err != nil {
						return f.Fail("report", err)
					}
					return f.SuccessWithWarning(newViewResult(v), strings.Join(warnings, "; "),
						func(w io.Writer) error { return report.WriteText(w, v) })
				}

				snap, err := app.Reports.Snapshot(ctx)
				if err != nil {
					return f.Fail("report", err)
				}
				views := snap.Views()
				results := make([]viewResult, 0, len(views))
				for _, v := range views {
					results = append(results, newViewResult(v))
				}
				return f.SuccessWithWarning(results, strings.Join(snap.Warnings, "; "), func(w io.Writer) error {
					for i, v := range views {
						if i > 0 {
							if _, err := fmt.Fprintln(w); err != nil {
								return err
							}
						}
						if err := report.WriteText(w, v); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	}
}
