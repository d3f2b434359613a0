package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lifestream/internal/markdown"
)

func newActionsCmd(_ *options) *cobra.Command {
	var cuesOnly bool
	cmd := &cobra.Command{
		Use:   "actions <file.md|->",
		Short: "Print the checklist items of a report, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			md := string(raw)
			if cuesOnly {
				section, ok := markdown.ExtractSection(md, markdown.CuesAliases)
				if !ok {
					return fmt.Errorf("no cues section in %s", args[0])
				}
				md = section
			}
			for _, item := range markdown.ExtractActionItems(md) {
				fmt.Fprintln(cmd.OutOrStdout(), item)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&cuesOnly, "cues", false, "Only read items inside the cues section")
	return cmd
}
