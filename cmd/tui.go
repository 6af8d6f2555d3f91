/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/peoplekit/inbox-sync/internal/tui"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive inbox view",
	Long: `Open the interactive inbox view.

The view stays synchronized while open: the baseline loads on start and
live notifications appear at the top as they arrive. Press enter to mark
the selected notification as read, q to quit.`,
	Run: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	exitOnError(err)

	s := buildStack(cfg)
	model := tui.NewModel(context.Background(), s.engine)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	exitOnError(err)
}
