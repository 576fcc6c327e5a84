// Package app provides application-level wiring and dependency injection
// for the taskflow server and admin CLI.
package app

import (
	"database/sql"
	"errors"
	"log/slog"

	"taskflow/internal/config"
	"taskflow/internal/db/repository"
	"taskflow/internal/service/notification"
	"taskflow/internal/service/project"
	"taskflow/internal/service/security"
	"taskflow/internal/service/task"
)

// Deps holds the external dependencies that main() must provide.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// Services groups all service pointers that the API handler needs.
type Services struct {
	Users         *security.UserService
	Permissions   *security.PermissionService
	Projects      *project.ProjectService
	Members       *project.MembershipService
	Invitations   *project.InvitationService
	Tasks         *task.TaskService
	Reassign      *task.ReassignService
	Notifications *notification.Service
}

// App holds the fully-wired application: services, the user lookup the
// auth middleware needs and the notification purger.
type App struct {
	Services Services
	// UserLookup reads from the read pool; it backs the auth middleware.
	UserLookup *repository.UserRepo
	// Purger is nil when notification purging is disabled.
	Purger *notification.Purger
}

// New wires all repositories and services from the provided deps.
func New(deps Deps) (*App, error) {
	if deps.Cfg == nil || deps.WriteDB == nil || deps.ReadDB == nil || deps.Logger == nil {
		return nil, errors.New("app: config, databases and logger are required")
	}
	cfg := deps.Cfg
	logger := deps.Logger

	// === Repositories (write-pool) ===
	userRepo := repository.NewUserRepo(deps.WriteDB)
	permissionRepo := repository.NewPermissionRepo(deps.WriteDB)
	projectRepo := repository.NewProjectRepo(deps.WriteDB)
	membershipRepo := repository.NewMembershipRepo(deps.WriteDB)
	invitationRepo := repository.NewInvitationRepo(deps.WriteDB)
	taskRepo := repository.NewTaskRepo(deps.WriteDB)
	reassignRepo := repository.NewReassignRepo(deps.WriteDB)
	notificationRepo := repository.NewNotificationRepo(deps.WriteDB)

	// === Repositories (read-pool) ===
	userLookup := repository.NewUserRepo(deps.ReadDB)

	emitter := notification.NewEmitter(notificationRepo)

	a := &App{
		Services: Services{
			Users:         security.NewUserService(userRepo),
			Permissions:   security.NewPermissionService(permissionRepo, userRepo, logger),
			Projects:      project.NewProjectService(projectRepo, membershipRepo, emitter, logger),
			Members:       project.NewMembershipService(projectRepo, userRepo, membershipRepo, emitter, logger),
			Invitations:   project.NewInvitationService(projectRepo, userRepo, membershipRepo, invitationRepo, emitter, logger),
			Tasks:         task.NewTaskService(projectRepo, membershipRepo, taskRepo, logger),
			Reassign:      task.NewReassignService(projectRepo, userRepo, membershipRepo, taskRepo, reassignRepo, emitter, logger),
			Notifications: notification.NewService(notificationRepo),
		},
		UserLookup: userLookup,
	}

	if cfg.NotificationPurgeEnabled {
		a.Purger = notification.NewPurger(notificationRepo, cfg.NotificationPurgeSchedule, cfg.NotificationRetention, logger)
	}
	return a, nil
}
