package cli

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"lifestream/internal/api/reportv1"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json|->",
		Short: "Import journal entries from a JSON array",
		Long: `Import reads a JSON array of entries:

  [{"id": "optional", "timestamp": 1709629200000, "content": "text", "tags": ["a"]}]

Entries without an id get one assigned by the server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			var entries []reportv1.LogEntry
			if err := json.Unmarshal(raw, &entries); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			res, err := opts.client().ImportLogs(cmd.Context(), &reportv1.ImportLogsRequest{Entries: entries})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries\n", res.Imported)
			return nil
		},
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}
