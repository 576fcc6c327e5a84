package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"taskflow/internal/domain"
)

func newUserCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserCreateCmd(opts))
	cmd.AddCommand(newUserListCmd(opts))
	cmd.AddCommand(newUserSetRoleCmd(opts))
	cmd.AddCommand(newUserSetActiveCmd(opts, "deactivate", false))
	cmd.AddCommand(newUserSetActiveCmd(opts, "activate", true))
	return cmd
}

type userView struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Role        domain.GlobalRole   `json:"role"`
	Active      bool                `json:"active"`
	Permissions []domain.Permission `json:"permissions"`
}

func toUserView(u domain.User) userView {
	perms := u.Permissions
	if perms == nil {
		perms = []domain.Permission{}
	}
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Active: u.Active, Permissions: perms}
}

func permissionList(perms []domain.Permission) string {
	if len(perms) == 0 {
		return "-"
	}
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	return strings.Join(names, ",")
}

func printUsers(cmd *cobra.Command, users []domain.User) error {
	views := make([]userView, 0, len(users))
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
		rows = append(rows, []string{u.ID, u.Name, u.Email, string(u.Role), strconv.FormatBool(u.Active), permissionList(u.Permissions)})
	}
	if getOutputFormat(cmd) == "json" {
		return printJSON(cmd.OutOrStdout(), views)
	}
	return printTable(cmd.OutOrStdout(), []string{"id", "name", "email", "role", "active", "permissions"}, rows)
}

func newUserCreateCmd(opts *options) *cobra.Command {
	var name, email, role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			u, err := s.app.Services.Users.Register(s.ctx, domain.CreateUserRequest{
				Name: name, Email: email, Role: domain.GlobalRole(strings.ToUpper(role)),
			})
			if err != nil {
				return err
			}
			return printResult(cmd, toUserView(*u), fmt.Sprintf("Created user %s (%s, %s)", u.ID, u.Email, u.Role))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleUser), "Global role: USER, PROJECT_MANAGER or ADMIN")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newUserListCmd(opts *options) *cobra.Command {
	var maxResults int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			users, _, err := s.app.Services.Users.List(s.ctx, domain.PageRequest{MaxResults: maxResults})
			if err != nil {
				return err
			}
			return printUsers(cmd, users)
		},
	}
	cmd.Flags().IntVar(&maxResults, "max-results", domain.MaxPageSize, "Maximum number of users to list")
	return cmd
}

func newUserSetRoleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <user-id> <role>",
		Short: "Change a user's global role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			u, err := s.app.Services.Users.SetRole(s.ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return printResult(cmd, toUserView(*u), fmt.Sprintf("User %s is now %s", u.ID, u.Role))
		},
	}
}

func newUserSetActiveCmd(opts *options, use string, active bool) *cobra.Command {
	short := "Disable a user's access"
	if active {
		short = "Re-enable a user's access"
	}
	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			u, err := s.app.Services.Users.SetActive(s.ctx, args[0], active)
			if err != nil {
				return err
			}
			return printResult(cmd, toUserView(*u), fmt.Sprintf("User %s active=%t", u.ID, u.Active))
		},
	}
}
