package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newConfigCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change client settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(e.out, "config file: %s\n", e.configPath)
			fmt.Fprintf(e.out, "server_url:  %s\n", e.config.ServerURL)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-server URL",
		Short: "Save the API server URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := url.Parse(args[0])
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("invalid server url %q", args[0])
			}

			e.config.ServerURL = args[0]
			if err := e.config.Save(e.configPath); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Server set to %s\n", args[0])
			return nil
		},
	})
	return cmd
}
