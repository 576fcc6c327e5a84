// Package cli implements taskflow-admin, the operator CLI that manages
// users and permissions directly against the workflow store.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			_ = printJSON(os.Stdout, map[string]string{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// options holds the resolved global settings shared by every command.
type options struct {
	dbPath  string
	actor   string
	output  string
	profile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "taskflow-admin",
		Short:         "Taskflow administration CLI",
		Long:          "Manage taskflow users, permissions and the workflow database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadOrDefault()
			if err != nil {
				return err
			}
			p, err := cfg.ActiveProfile(opts.profile)
			if err != nil {
				return err
			}

			// Apply precedence: flag > env > profile > default
			resolve(cmd, "db", &opts.dbPath, "TASKFLOW_DB_PATH", p.DBPath)
			resolve(cmd, "actor", &opts.actor, "TASKFLOW_ACTOR", p.Actor)
			resolve(cmd, "output", &opts.output, "TASKFLOW_OUTPUT", p.Output)
			// Keep the flag in sync so subcommands see the resolved format.
			_ = cmd.Root().PersistentFlags().Set("output", opts.output)

			return validateOutputFormat(opts.output)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "taskflow.sqlite", "Path to the workflow SQLite database")
	rootCmd.PersistentFlags().StringVar(&opts.actor, "actor", "", "User ID to act as (default: built-in operator)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVarP(&opts.profile, "profile", "p", "", "Config profile to use")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log service activity to stderr")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMigrateCmd(opts))
	rootCmd.AddCommand(newUserCmd(opts))
	rootCmd.AddCommand(newPermissionCmd(opts))
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// resolve fills *dst from env or the profile unless the flag was set.
func resolve(cmd *cobra.Command, flag string, dst *string, envKey, profileVal string) {
	if cmd.Flags().Changed(flag) {
		return
	}
	if v := os.Getenv(envKey); v != "" {
		*dst = v
	} else if profileVal != "" {
		*dst = profileVal
	}
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	if !o.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
	return cmd
}
