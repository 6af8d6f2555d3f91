/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/peoplekit/inbox-sync/internal/api"
	"github.com/peoplekit/inbox-sync/internal/auth"
	"github.com/peoplekit/inbox-sync/internal/colors"
	"github.com/peoplekit/inbox-sync/internal/config"
	"github.com/peoplekit/inbox-sync/internal/connection"
	"github.com/peoplekit/inbox-sync/internal/gateway"
	"github.com/peoplekit/inbox-sync/internal/logging"
	"github.com/peoplekit/inbox-sync/internal/store"
	"github.com/peoplekit/inbox-sync/internal/syncer"
	"github.com/peoplekit/inbox-sync/internal/version"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "inbox-sync",
	Short: "Keep your notification inbox in sync, live.",
	Long:  `Keep your notification inbox in sync, live.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = version.String()

	// Hide the completion command
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		printHelpText(cmd)
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/inbox-sync/config.toml)")
}

// loadConfig reads the config file selected by --config, or the default
// location, and initializes logging from it.
func loadConfig() (config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	logging.SetLevel(cfg.Log.Level)
	return cfg, nil
}

// stack bundles the client components wired from one config.
type stack struct {
	client  *api.Client
	store   *store.Store
	manager *connection.Manager
	engine  *syncer.Engine
}

// buildStack wires the full sync stack: REST client, store, connection
// manager, mutation gateway, and engine.
func buildStack(cfg config.Config) *stack {
	creds := auth.NewStatic(cfg.Auth.Token)
	client := api.NewClient(cfg.Server.BaseURL, creds)
	st := store.New()

	policy := connection.Policy{
		MaxAttempts: cfg.Reconnect.MaxAttempts,
		FloorDelay:  time.Duration(cfg.Reconnect.FloorDelayMS) * time.Millisecond,
		CapDelay:    time.Duration(cfg.Reconnect.CapDelayMS) * time.Millisecond,
	}
	manager := connection.NewManager(cfg.Server.SocketURL, creds, connection.WithPolicy(policy))
	gw := gateway.New(client, st)
	engine := syncer.New(client, manager, st, gw, creds)

	return &stack{
		client:  client,
		store:   st,
		manager: manager,
		engine:  engine,
	}
}

func printHelpText(cmd *cobra.Command) {
	commandOrder := []string{
		"list",
		"follow",
		"mark-read",
		"tui",
		"help",
		"version",
	}

	var cmdLines []string
	for _, name := range commandOrder {
		var found *cobra.Command
		for _, c := range cmd.Commands() {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			continue
		}
		cmdLines = append(cmdLines, fmt.Sprintf("    %-16s %s", found.Use, found.Short))
	}

	helpText := fmt.Sprintf(`inbox-sync v%s

Keep your notification inbox in sync, live.

USAGE:
    inbox-sync [COMMAND] [OPTIONS]

COMMANDS:
%s

OPTIONS:
    --config <path> Use a specific config file
    -h, --help      Show help message
`, version.String(), strings.Join(cmdLines, "\n"))
	fmt.Print(helpText)
}

// exitOnError prints the error and terminates, the shared failure path
// of the non-interactive commands.
func exitOnError(err error) {
	if err == nil {
		return
	}
	colors.Error(err.Error())
	os.Exit(1)
}
