// Package cli is the tasklists command line client.
package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"taskLists/internal/client"

	"github.com/spf13/cobra"
)

// env is shared by every subcommand of one invocation.
type env struct {
	out        io.Writer
	configPath string
	serverURL  string
	timeout    time.Duration

	config *Config
	store  *client.Store
}

// NewRootCommand builds the command tree writing its output to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	e := &env{out: out}

	root := &cobra.Command{
		Use:   "tasklists",
		Short: "Manage task lists from the terminal",
		Long: `tasklists talks to a task lists API server.

Examples:
  tasklists lists add Work --color "#3366ff"
  tasklists tasks add "Write report" --list 1 --priority 1
  tasklists tasks ls --pending`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup()
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	defaultPath, _ := DefaultConfigPath()
	root.PersistentFlags().StringVar(&e.configPath, "config", defaultPath, "Path to config file")
	root.PersistentFlags().StringVar(&e.serverURL, "server", "", "API server URL (overrides config)")
	root.PersistentFlags().DurationVar(&e.timeout, "timeout", client.DefaultTimeout, "Request timeout")

	root.AddCommand(newListsCommand(e))
	root.AddCommand(newTasksCommand(e))
	root.AddCommand(newConfigCommand(e))
	return root
}

// Execute runs the CLI with the process arguments.
func Execute() error {
	return NewRootCommand(os.Stdout).Execute()
}

func (e *env) setup() error {
	cfg, err := LoadConfig(e.configPath)
	if err != nil {
		return err
	}
	e.config = cfg

	server := cfg.ServerURL
	if e.serverURL != "" {
		server = e.serverURL
	}
	api := client.New(server, client.WithHTTPClient(&http.Client{Timeout: e.timeout}))
	e.store = client.NewStore(api, time.Minute)
	return nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
