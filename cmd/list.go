/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/peoplekit/inbox-sync/internal/colors"
	"github.com/peoplekit/inbox-sync/internal/format"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Fetch and print the current notification list",
	Long: `Fetch and print the current notification list.

USAGE:
    inbox-sync list [OPTIONS]

OPTIONS:
    --format <style>  Output format: table, simple, compact, json (default: table)
    --unread          Show only unread notifications
    -h, --help        Show this help`,
	Run: runList,
}

var (
	listFormat string
	listUnread bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listFormat, "format", "table", "Output format: table, simple, compact, json")
	listCmd.Flags().BoolVar(&listUnread, "unread", false, "Show only unread notifications")
}

func runList(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	exitOnError(err)

	s := buildStack(cfg)
	records, err := s.client.List(context.Background())
	exitOnError(err)

	if listUnread {
		filtered := records[:0]
		for _, n := range records {
			if !n.IsRead() {
				filtered = append(filtered, n)
			}
		}
		records = filtered
	}

	if len(records) == 0 {
		colors.Info("No notifications.")
		return
	}

	formatter := format.NewFormatter(format.FormatterType(listFormat))
	exitOnError(formatter.FormatNotifications(records, os.Stdout))
}
