package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"taskflow/internal/app"
	"taskflow/internal/config"
	internaldb "taskflow/internal/db"
	"taskflow/internal/db/repository"
	"taskflow/internal/domain"
)

// operatorActor is used when no --actor is configured. Direct database
// access already implies full control, so it holds the administrator role.
var operatorActor = domain.Actor{
	ID:       "taskflow-admin",
	Name:     "taskflow-admin",
	Role:     domain.RoleAdmin,
	IsActive: true,
}

// session is an open, migrated store plus the wired services.
type session struct {
	writeDB *sql.DB
	readDB  *sql.DB
	app     *app.App
	ctx     context.Context
}

// openSession opens and migrates the database and resolves the acting
// identity into the returned session's context.
func openSession(cmd *cobra.Command, opts *options) (*session, error) {
	writeDB, readDB, err := internaldb.OpenPair(opts.dbPath, 1)
	if err != nil {
		return nil, err
	}
	s := &session{writeDB: writeDB, readDB: readDB}
	if err := internaldb.Migrate(writeDB); err != nil {
		s.close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// Purging is a server concern; the zero Config leaves it disabled.
	s.app, err = app.New(app.Deps{Cfg: &config.Config{}, WriteDB: writeDB, ReadDB: readDB, Logger: opts.logger(cmd)})
	if err != nil {
		s.close()
		return nil, err
	}

	actor := operatorActor
	if opts.actor != "" {
		u, err := repository.NewUserRepo(writeDB).GetByID(cmd.Context(), opts.actor)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("resolve actor: %w", err)
		}
		actor = domain.ActorFromUser(u)
	}
	s.ctx = domain.WithActor(cmd.Context(), actor)
	return s, nil
}

func (s *session) close() {
	_ = s.readDB.Close()
	_ = s.writeDB.Close()
}
