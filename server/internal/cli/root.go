package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/obsidianstack/alertrelay/server/internal/config"
)

// options holds the persistent flags. Empty or zero values leave the
// environment settings untouched.
type options struct {
	configPath  string
	listenAddr  string
	logLevel    string
	concurrency int

	settings *config.Settings
}

// NewRootCmd builds the alertrelay command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "alertrelay",
		Short: "Relay Alertmanager webhooks to ntfy push servers",
		Long: "Receives Alertmanager webhook batches and fans each alert out as a push\n" +
			"notification to every configured ntfy server, reporting per-server outcomes.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "path to the server document (overrides NTFY_CONFIG)")
	f.StringVar(&opts.listenAddr, "listen", "", "HTTP listen address (overrides RELAY_LISTEN_ADDR)")
	f.StringVar(&opts.logLevel, "log-level", "", "debug | info | warn | error (overrides RELAY_LOG_LEVEL)")
	f.IntVar(&opts.concurrency, "concurrency", 0, "parallel sends per notification (overrides RELAY_DISPATCH_CONCURRENCY)")

	root.AddCommand(
		newServeCmd(opts),
		newTestCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// load reads the settings, applies flag overrides and installs the logger.
// serve logs to stdout; the one-shot commands log to stderr so their JSON
// output stays clean.
func (o *options) load(cmd *cobra.Command) error {
	s, err := config.LoadSettings()
	if err != nil {
		return err
	}
	if o.configPath != "" {
		s.ConfigPath = o.configPath
	}
	if o.listenAddr != "" {
		s.ListenAddr = o.listenAddr
	}
	if o.logLevel != "" {
		s.LogLevel = o.logLevel
	}
	if o.concurrency != 0 {
		s.Concurrency = o.concurrency
	}
	if err := s.Validate(); err != nil {
		return err
	}
	o.settings = s

	var w io.Writer = cmd.ErrOrStderr()
	if cmd.Name() == "serve" {
		w = cmd.OutOrStdout()
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: s.SlogLevel()})))
	return nil
}
