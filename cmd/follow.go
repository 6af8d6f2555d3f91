/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/peoplekit/inbox-sync/internal/colors"
	"github.com/peoplekit/inbox-sync/internal/domain"
	"github.com/peoplekit/inbox-sync/internal/format"
	"github.com/peoplekit/inbox-sync/internal/syncer"
)

// followCmd represents the follow command
var followCmd = &cobra.Command{
	Use:   "follow",
	Short: "Stream notifications in real-time",
	Long: `Stream notifications in real-time.

Prints the synchronized baseline once, then every live notification as
it arrives. Connectivity transitions are reported inline; the stream
survives connection drops through automatic reconnection.

USAGE:
    inbox-sync follow [OPTIONS]

OPTIONS:
    --unread    Print only unread notifications
    -h, --help  Show this help`,
	Run: runFollow,
}

var followUnread bool

func init() {
	rootCmd.AddCommand(followCmd)

	followCmd.Flags().BoolVar(&followUnread, "unread", false, "Print only unread notifications")
}

// followEngine is the engine surface consumed by Follow.
type followEngine interface {
	Start(ctx context.Context)
	Stop()
	Status() syncer.Status
	Notifications() []domain.Notification
	Updates() <-chan struct{}
}

// FollowOptions holds all parameters for following notifications.
type FollowOptions struct {
	// UnreadOnly skips read records.
	UnreadOnly bool
	// Output is where notifications are written (default os.Stdout).
	Output io.Writer
}

// Follow starts the engine and streams every newly observed
// notification to the output. It runs until interrupted (Ctrl+C) or the
// context is cancelled.
func Follow(ctx context.Context, engine followEngine, opts FollowOptions) error {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	engine.Start(ctx)
	defer engine.Stop()

	colors.Info("Following notifications (Ctrl+C to stop)...")

	seen := make(map[string]bool)
	lastConnected := false
	errReported := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-sigChan:
			fmt.Fprintf(opts.Output, "\nReceived signal %v, stopping...\n", sig)
			return nil
		case <-engine.Updates():
			status := engine.Status()
			if status.Connected != lastConnected {
				if err := format.WriteStatusLine(opts.Output, status.Connected); err != nil {
					return err
				}
				lastConnected = status.Connected
			}
			if status.Err != nil && !errReported {
				colors.Warning(status.Err.Error())
				errReported = true
			}

			// The list is newest-first; walk it backwards so unseen
			// records print in chronological order.
			items := engine.Notifications()
			for i := len(items) - 1; i >= 0; i-- {
				n := items[i]
				if seen[n.ID] {
					continue
				}
				seen[n.ID] = true
				if opts.UnreadOnly && n.IsRead() {
					continue
				}
				if err := format.WriteLive(opts.Output, n); err != nil {
					return err
				}
			}
		}
	}
}

func runFollow(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	exitOnError(err)

	s := buildStack(cfg)
	opts := FollowOptions{UnreadOnly: followUnread}
	exitOnError(Follow(context.Background(), s.engine, opts))
}
