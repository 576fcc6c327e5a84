package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskflow/internal/domain"
)

func newPermissionCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "permission",
		Aliases: []string{"perm"},
		Short:   "Grant and revoke explicit permissions",
	}
	cmd.AddCommand(newPermissionGrantCmd(opts))
	cmd.AddCommand(newPermissionRevokeCmd(opts))
	cmd.AddCommand(newPermissionListCmd(opts))
	return cmd
}

func newPermissionGrantCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "grant <user-id> <permission>",
		Short: "Grant a permission to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.app.Services.Permissions.Grant(s.ctx, args[0], args[1]); err != nil {
				return err
			}
			return printResult(cmd,
				map[string]string{"status": "granted", "user_id": args[0], "permission": args[1]},
				fmt.Sprintf("Granted %s to %s", args[1], args[0]))
		},
	}
}

func newPermissionRevokeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <user-id> <permission>",
		Short: "Revoke a permission from a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.app.Services.Permissions.Revoke(s.ctx, args[0], args[1]); err != nil {
				return err
			}
			return printResult(cmd,
				map[string]string{"status": "revoked", "user_id": args[0], "permission": args[1]},
				fmt.Sprintf("Revoked %s from %s", args[1], args[0]))
		},
	}
}

func newPermissionListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list <user-id>",
		Short: "List a user's explicit permissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			perms, err := s.app.Services.Permissions.ListForUser(s.ctx, args[0])
			if err != nil {
				return err
			}
			if perms == nil {
				perms = []domain.Permission{}
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{"user_id": args[0], "permissions": perms})
			}
			rows := make([][]string, 0, len(perms))
			for _, p := range perms {
				rows = append(rows, []string{string(p)})
			}
			return printTable(cmd.OutOrStdout(), []string{"permission"}, rows)
		},
	}
}
