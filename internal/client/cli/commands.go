package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
)

func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save <kind> <json>",
		Short: "Save a record locally, queueing it when offline",
		Long: `Save a record through the facade for its kind.

Kinds: assessment, analytics, user_data. Any other kind goes to the cache.
user_data and cache payloads must look like {"key": "...", "value": ...}.

Examples:
  offsync save assessment '{"id":"a1","score":4}'
  offsync save user_data '{"key":"prefs","value":{"theme":"dark"}}' --offline`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, payload := args[0], []byte(args[1])
			if !json.Valid(payload) {
				return fmt.Errorf("payload for %s is not valid JSON", kind)
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *App) error {
				if err := a.binding.Save(ctx, kind, json.RawMessage(payload)); err != nil {
					return err
				}
				if a.binding.IsOnline() {
					fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", kind)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "saved %s (queued for sync)\n", kind)
				}
				return nil
			})
		},
	}
}

func NewReadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read <kind> [key]",
		Short: "Print locally stored records as JSON",
		Long: `Read records from the local store.

Kinds: assessments, assessment <id>, analytics, user_data <key>, cache <key>.
Unknown kinds and missing records print null.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 2 {
				key = args[1]
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *App) error {
				v, err := a.binding.Read(ctx, args[0], key)
				if err != nil {
					return err
				}
				return writeJSON(cmd, v)
			})
		},
	}
}

func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one synchronization pass now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *App) error {
				res, err := a.binding.SyncNow(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd, res)
			})
		},
	}
}

func NewQueueCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "List mutations waiting for delivery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *App) error {
				items, err := a.binding.Pending(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd, items)
			})
		},
	}
}

func NewDeadLettersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dead-letters",
		Short: "List mutations that ran out of delivery attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *App) error {
				items, err := a.binding.DeadLetters(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd, items)
			})
		},
	}
}

func NewEvictCommand(rootOpts *RootOptions) *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "evict",
		Short: "Remove cache entries older than --max-age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *App) error {
				age := a.config.CacheMaxAge
				if cmd.Flags().Changed("max-age") {
					age = maxAge
				}
				n, err := a.binding.EvictCache(ctx, age)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "evicted %d cache entries\n", n)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&maxAge, "max-age", 24*time.Hour, "evict entries written at least this long ago")
	return cmd
}

func NewUsageCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Print local storage usage in bytes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *App) error {
				return writeJSON(cmd, a.binding.StorageUsage())
			})
		},
	}
}

func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every locally stored record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear local data without --yes")
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *App) error {
				if err := a.binding.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "local data cleared")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all local data")
	return cmd
}

func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Probe connectivity and sync on every reconnect until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *App) error {
				return watch(ctx, cmd, a)
			})
		},
	}
}

func watch(ctx context.Context, cmd *cobra.Command, a *App) error {
	events, unsubscribe := a.binding.WatchOnline()
	defer unsubscribe()

	stopSync := a.scheduler.Start(ctx)
	defer stopSync()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx)
	}()
	defer wg.Wait()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "watching, %s\n", modeName(a.binding.IsOnline()))

	// a pass for whatever is already pending
	if a.binding.IsOnline() {
		if _, err := a.binding.SyncNow(ctx); err != nil && ctx.Err() == nil {
			a.logger.Warn(ctx, "initial sync failed", "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "stopped")
			return nil
		case online, ok := <-events:
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "switched to %s mode\n", modeName(online))
		}
	}
}

func modeName(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}
