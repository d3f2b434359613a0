// Package cli is the lifestream command line client. It talks to a running
// server over the report RPC service; `actions` works on local files.
package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lifestream/internal/api/reportv1"
)

const defaultServer = "http://localhost:8787"

type options struct {
	server     string
	user       string
	userHeader string
	timeout    time.Duration
	out        io.Writer
	httpClient *http.Client
}

func (o *options) client() *reportv1.Client {
	hc := o.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: o.timeout}
	}
	return reportv1.NewClient(hc, o.server, o.user).WithUserHeader(o.userHeader)
}

// NewRootCommand builds the command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	return newRootCommand(&options{out: out})
}

func newRootCommand(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "lifestream",
		Short: "Generate and manage journal reports",
		Long: `lifestream turns journal entries into periodic Markdown reports and
Cornell-style cues using a language model running behind the lifestream server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.out)

	server := strings.TrimSpace(os.Getenv("LIFESTREAM_SERVER"))
	if server == "" {
		server = defaultServer
	}
	root.PersistentFlags().StringVar(&opts.server, "server", server, "Server base URL")
	root.PersistentFlags().StringVar(&opts.user, "user", os.Getenv("LIFESTREAM_USER"), "User id sent to the server")
	root.PersistentFlags().StringVar(&opts.userHeader, "user-header", reportv1.DefaultUserHeader, "Header carrying the user id")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Minute, "Request timeout")

	root.AddCommand(newGenerateCmd(opts))
	root.AddCommand(newCuesCmd(opts))
	root.AddCommand(newReportsCmd(opts))
	root.AddCommand(newImportCmd(opts))
	root.AddCommand(newActionsCmd(opts))
	return root
}

// Execute runs the CLI against os.Args.
func Execute() error {
	if err := NewRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
