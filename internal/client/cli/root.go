package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Database   string
	Remote     string
	Interval   time.Duration
	Offline    bool
	LogFormat  string
	LogLevel   string
}

// NewRootCommand creates the offsync command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "offsync",
		Short: "Offline-first local store with background sync",
		Long: `offsync keeps assessments, analytics events, cached lookups and user data
in a local database, queues writes made while offline and pushes them to the
remote authority once it is reachable again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	bindRootFlags(cmd.PersistentFlags(), opts)

	cmd.AddCommand(
		NewSaveCommand(opts),
		NewReadCommand(opts),
		NewSyncCommand(opts),
		NewQueueCommand(opts),
		NewDeadLettersCommand(opts),
		NewEvictCommand(opts),
		NewUsageCommand(opts),
		NewResetCommand(opts),
		NewWatchCommand(opts),
	)
	return cmd
}

func bindRootFlags(pf *pflag.FlagSet, opts *RootOptions) {
	var defaults config.Config
	defaults.LoadDefaults()

	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "path to a JSON or YAML config file")
	pf.StringVar(&opts.Database, "db", defaults.DatabasePath, "path to the local database")
	pf.StringVarP(&opts.Remote, "remote", "r", defaults.RemoteBaseURL, "base URL of the remote authority")
	pf.DurationVarP(&opts.Interval, "interval", "i", defaults.OnlineCheckInterval, "online status check interval")
	pf.BoolVar(&opts.Offline, "offline", false, "treat the remote as unreachable")
	pf.StringVar(&opts.LogFormat, "log-format", defaults.LogFormat, "log format (text|json|zap)")
	pf.StringVar(&opts.LogLevel, "log-level", defaults.LogLevel, "log level (debug|info|warn|error)")
}

// resolveConfig applies defaults, then the config file, then any flag the
// user set explicitly.
func resolveConfig(cmd *cobra.Command, opts *RootOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DatabasePath = opts.Database
	}
	if flags.Changed("remote") {
		cfg.RemoteBaseURL = opts.Remote
	}
	if flags.Changed("interval") {
		cfg.OnlineCheckInterval = opts.Interval
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = opts.LogFormat
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.LogLevel
	}
	return cfg, nil
}

// withApp runs fn against a freshly built App and closes it afterwards.
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, a *App) error) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := NewApp(ctx, cfg, opts.Offline, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
