package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/supportdesk-io/sdesk/internal/config"
	"github.com/supportdesk-io/sdesk/internal/session"
	"github.com/supportdesk-io/sdesk/internal/tickets"
	"github.com/supportdesk-io/sdesk/internal/transport"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "sdesk",
	Short: "SupportDesk CLI - helpdesk ticket client",
	Long: `SupportDesk Command Line Interface

A terminal client for the SupportDesk helpdesk backend: log in,
browse and search tickets, and work them from the command line or
the built-in TUI.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configFlag string
	debugFlag  bool
)

// Wired per invocation by setup.
var (
	cfg        *config.Config
	holder     *session.Holder
	api        *transport.Adapter
	auth       *session.Service
	controller *tickets.Controller
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	rootCmd.PersistentPreRunE = setup

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("SupportDesk CLI %s\n", rootCmd.Version)
	},
}

// setup builds the client stack shared by every command: config,
// persisted session, transport, and the ticket controller.
func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if debugFlag {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var err error
	cfg, err = config.Load(configFlag)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if debugFlag {
		cfg.Debug = true
	}

	store := session.NewStore(cfg.Auth.TokenPath)
	holder, err = session.NewHolder(store)
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}

	api = transport.New(transport.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
		Debug:     cfg.Debug,
	}, holder)

	auth = session.NewService(holder, api)
	controller = tickets.NewController(api, holder, nil)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
