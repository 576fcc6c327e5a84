package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration profiles",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetFieldCmd("set-db <path>", "Set the database path of a profile",
		func(p *Profile, v string) { p.DBPath = v }))
	cmd.AddCommand(newConfigSetFieldCmd("set-actor <user-id>", "Set the acting user of a profile",
		func(p *Profile, v string) { p.Actor = v }))
	cmd.AddCommand(newConfigUseProfileCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "No configuration found at %s\n", ConfigPath())
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

// newConfigSetFieldCmd builds a command that stores one profile field.
func newConfigSetFieldCmd(use, short string, set func(*Profile, string)) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadOrDefault()
			if err != nil {
				return err
			}
			if name == "" {
				name = cfg.CurrentProfile
			}
			p := cfg.Profiles[name]
			set(&p, args[0])
			cfg.Profiles[name] = p

			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			return printResult(cmd,
				map[string]string{"status": "ok", "profile": name, "path": ConfigPath()},
				fmt.Sprintf("Profile %q saved to %s", name, ConfigPath()))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Profile name (default: the current profile)")
	return cmd
}

func newConfigUseProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use-profile <name>",
		Short: "Set the active configuration profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				return fmt.Errorf("no config found: %w", err)
			}
			name := args[0]
			if _, ok := cfg.Profiles[name]; !ok {
				return fmt.Errorf("profile %q not found", name)
			}
			cfg.CurrentProfile = name
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			return printResult(cmd,
				map[string]string{"status": "ok", "active_profile": name},
				fmt.Sprintf("Active profile set to %q", name))
		},
	}
}
