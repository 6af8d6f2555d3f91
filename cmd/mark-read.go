/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peoplekit/inbox-sync/internal/colors"
)

// markReadCmd represents the mark-read command
var markReadCmd = &cobra.Command{
	Use:   "mark-read <id>",
	Short: "Mark a notification as read",
	Long: `Mark a notification as read.

The change is confirmed by the server before anything is reported as
done; on failure the notification stays unread.

USAGE:
    inbox-sync mark-read <id>`,
	Args: cobra.ExactArgs(1),
	Run:  runMarkRead,
}

func init() {
	rootCmd.AddCommand(markReadCmd)
}

func runMarkRead(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	exitOnError(err)

	s := buildStack(cfg)
	id := args[0]
	exitOnError(s.engine.MarkAsRead(context.Background(), id))
	colors.Success(fmt.Sprintf("Notification %s marked as read", id))
}
