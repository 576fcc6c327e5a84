// Package api provides the HTTP handlers for the workflow REST API.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"taskflow/internal/app"
	"taskflow/internal/domain"
	"taskflow/internal/service/security"
)

// Handler serves the /v1 API on top of the application services.
type Handler struct {
	svc    app.Services
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(svc app.Services, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.With("component", "api")}
}

// Register mounts every route on r. Callers install authentication
// beforehand so each request carries a domain.Actor.
func (h *Handler) Register(r chi.Router) {
	r.Get("/me", h.getMe)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.listUsers)
		r.Post("/", h.createUser)
		r.Get("/{userID}", h.getUser)
		r.Put("/{userID}/role", h.setUserRole)
		r.Put("/{userID}/active", h.setUserActive)
		r.Get("/{userID}/permissions", h.listPermissions)
		r.Post("/{userID}/permissions", h.grantPermission)
		r.Delete("/{userID}/permissions/{permission}", h.revokePermission)
	})

	r.Route("/projects", func(r chi.Router) {
		r.Post("/", h.createProject)
		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/", h.getProject)
			r.Post("/review", h.reviewProject)
			r.Post("/archive", h.archiveProject)
			r.Get("/members", h.listMembers)
			r.Post("/members", h.addMember)
			r.Patch("/members/{userID}", h.changeMemberRole)
			r.Delete("/members/{userID}", h.removeMember)
			r.Get("/invitations", h.listProjectInvitations)
			r.Post("/invitations", h.createInvitation)
			r.Get("/reassign-requests", h.listPendingReassigns)
		})
	})

	r.Route("/invitations", func(r chi.Router) {
		r.Get("/", h.listMyInvitations)
		r.Get("/{invitationID}", h.getInvitation)
		r.Post("/{invitationID}/respond", h.respondInvitation)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", h.createTask)
		r.Get("/{taskID}", h.getTask)
		r.Post("/{taskID}/reassign", h.reassignTask)
		r.Post("/{taskID}/reassign-requests", h.requestReassign)
	})

	r.Route("/reassign-requests/{requestID}", func(r chi.Router) {
		r.Get("/", h.getReassign)
		r.Post("/review", h.reviewReassign)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.listNotifications)
		r.Post("/read-all", h.markAllNotificationsRead)
		r.Post("/{notificationID}/read", h.markNotificationRead)
	})
}

func (h *Handler) getMe(w http.ResponseWriter, r *http.Request) {
	actor, err := security.CurrentActor(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.svc.Users.Get(r.Context(), actor.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userToAPI(*u))
}

// === Users & permissions ===

type createUserBody struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var body createUserBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.svc.Users.Register(r.Context(), domain.CreateUserRequest{
		Name: body.Name, Email: body.Email, Role: domain.GlobalRole(body.Role),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, userToAPI(*u))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	users, total, err := h.svc.Users.List(r.Context(), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(users, total, page, userToAPI))
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Users.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userToAPI(*u))
}

type roleBody struct {
	Role string `json:"role"`
}

func (h *Handler) setUserRole(w http.ResponseWriter, r *http.Request) {
	var body roleBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.svc.Users.SetRole(r.Context(), chi.URLParam(r, "userID"), body.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userToAPI(*u))
}

type activeBody struct {
	Active *bool `json:"active"`
}

func (h *Handler) setUserActive(w http.ResponseWriter, r *http.Request) {
	var body activeBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	if body.Active == nil {
		h.writeError(w, r, domain.ErrValidation("active is required"))
		return
	}
	u, err := h.svc.Users.SetActive(r.Context(), chi.URLParam(r, "userID"), *body.Active)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userToAPI(*u))
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.svc.Permissions.ListForUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if perms == nil {
		perms = []domain.Permission{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"permissions": perms})
}

type permissionBody struct {
	Permission string `json:"permission"`
}

func (h *Handler) grantPermission(w http.ResponseWriter, r *http.Request) {
	var body permissionBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Permissions.Grant(r.Context(), chi.URLParam(r, "userID"), body.Permission); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) revokePermission(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Permissions.Revoke(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "permission")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
