package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/obsidianstack/alertrelay/server/internal/config"
)

// version is overridden at build time with -ldflags "-X ...cli.version=".
var version = "dev"

func newTestCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send one test notification to every configured server",
		Long:  "Sends the test notification once and prints the per-server report.\nExits non-zero when no server accepted it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			holder := config.NewHolder(config.Resolve(opts.settings.Inputs(), nil))
			rep, err := newService(opts.settings, holder, nil).Test(cmd.Context())
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), rep); err != nil {
				return err
			}
			if rep.Sent == 0 {
				return errors.New("test notification was not accepted by any server")
			}
			return nil
		},
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved servers and topic (credentials omitted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			holder := config.NewHolder(config.Resolve(opts.settings.Inputs(), nil))
			return printJSON(cmd.OutOrStdout(), newService(opts.settings, holder, nil).Introspect())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// version needs no settings.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"name":    "alertrelay",
				"version": version,
			})
		},
	}
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
