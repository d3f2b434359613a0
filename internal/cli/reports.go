package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"lifestream/internal/api/reportv1"
)

func newReportsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List, show and delete stored reports",
	}

	var typ string
	list := &cobra.Command{
		Use:   "list",
		Short: "List reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := opts.client().ListReports(cmd.Context(), &reportv1.ListReportsRequest{Type: strings.ToUpper(typ)})
			if err != nil {
				return err
			}
			if len(res.Reports) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No reports.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tPERIOD\tSIZE\tCREATED")
			for _, r := range res.Reports {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Type, periodLabel(r),
					humanize.Bytes(uint64(len(r.Content))), humanize.Time(time.UnixMilli(r.CreatedAt)))
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&typ, "type", "", "Only this report type")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a report's Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client().GetReport(cmd.Context(), &reportv1.GetReportRequest{ID: args[0]})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Report.Content)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.client().DeleteReport(cmd.Context(), &reportv1.DeleteReportRequest{ID: args[0]}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, show, del)
	return cmd
}
