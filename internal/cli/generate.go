package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"lifestream/internal/api/reportv1"
)

type periodFlags struct {
	start string
	end   string
	lang  string
	name  string
}

func (p *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.start, "start", "", "Period start (YYYY-MM-DD, required)")
	cmd.Flags().StringVar(&p.end, "end", "", "Period end (YYYY-MM-DD); defaults to --start")
	cmd.Flags().StringVar(&p.lang, "lang", "en", "Output language (en, zh)")
	cmd.Flags().StringVar(&p.name, "name", "", "Human readable period name")
	_ = cmd.MarkFlagRequired("start")
}

func (p *periodFlags) endOrStart() string {
	if strings.TrimSpace(p.end) == "" {
		return p.start
	}
	return p.end
}

func newGenerateCmd(opts *options) *cobra.Command {
	var (
		period periodFlags
		typ    string
		force  bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate (or fetch) the report for a period",
		Example: `  lifestream generate --type daily --start 2024-03-05
  lifestream generate --type weekly --start 2024-03-04 --end 2024-03-10 --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := opts.client().GenerateReport(cmd.Context(), &reportv1.GenerateReportRequest{
				Type:        strings.ToUpper(typ),
				PeriodStart: period.start,
				PeriodEnd:   period.endOrStart(),
				Language:    period.lang,
				PeriodName:  period.name,
				Force:       force,
			})
			if err != nil {
				return err
			}
			if output != "" {
				if err := os.WriteFile(output, []byte(res.Report.Content), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
			}
			status := "existing"
			if res.Generated {
				status = "generated"
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s report %s (%s) %s, %s chars\n", status, res.Report.ID, res.Report.Type,
				periodLabel(res.Report), humanize.Comma(int64(len(res.Report.Content))))
			if output == "" {
				fmt.Fprintln(w)
				fmt.Fprintln(w, res.Report.Content)
			}
			if len(res.ActionItems) > 0 {
				fmt.Fprintf(w, "\n%d action items\n", len(res.ActionItems))
			}
			return nil
		},
	}
	period.register(cmd)
	cmd.Flags().StringVar(&typ, "type", "daily", "Report type: daily, weekly, monthly, yearly")
	cmd.Flags().BoolVar(&force, "force", false, "Regenerate even when a report exists")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the Markdown to a file instead of stdout")
	return cmd
}

func newCuesCmd(opts *options) *cobra.Command {
	var period periodFlags
	cmd := &cobra.Command{
		Use:   "cues",
		Short: "Generate a standalone cues digest (not stored)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := opts.client().GenerateCues(cmd.Context(), &reportv1.GenerateCuesRequest{
				PeriodStart: period.start,
				PeriodEnd:   period.endOrStart(),
				Language:    period.lang,
				PeriodName:  period.name,
			})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if res.Found {
				fmt.Fprintln(w, res.Cues)
			} else {
				fmt.Fprintln(w, res.Content)
			}
			return nil
		},
	}
	period.register(cmd)
	return cmd
}

func periodLabel(r reportv1.Report) string {
	if r.PeriodStart == r.PeriodEnd {
		return r.PeriodStart
	}
	return r.PeriodStart + " ~ " + r.PeriodEnd
}
