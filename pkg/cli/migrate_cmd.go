package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	internaldb "taskflow/internal/db"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			v, err := internaldb.SchemaVersion(s.writeDB)
			if err != nil {
				return err
			}
			return printResult(cmd,
				map[string]any{"status": "ok", "db": opts.dbPath, "version": v},
				fmt.Sprintf("Database %s is at schema version %d", opts.dbPath, v))
		},
	}
}
