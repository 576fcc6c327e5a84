package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"taskflow/internal/domain"
)

type createProjectBody struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var body createProjectBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.svc.Projects.Create(r.Context(), domain.CreateProjectRequest{Name: body.Name, Description: body.Description})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, projectToAPI(*p))
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Projects.Get(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectToAPI(*p))
}

type decisionBody struct {
	Decision string `json:"decision"`
}

func (h *Handler) reviewProject(w http.ResponseWriter, r *http.Request) {
	var body decisionBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.svc.Projects.Review(r.Context(), chi.URLParam(r, "projectID"), body.Decision)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectToAPI(*p))
}

func (h *Handler) archiveProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Projects.Archive(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectToAPI(*p))
}

// === Members ===

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	members, total, err := h.svc.Members.ListMembers(r.Context(), chi.URLParam(r, "projectID"), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(members, total, page, memberToAPI))
}

type addMemberBody struct {
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	var body addMemberBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := h.svc.Members.AddMember(r.Context(), chi.URLParam(r, "projectID"), body.UserID, body.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, memberToAPI(*m))
}

func (h *Handler) changeMemberRole(w http.ResponseWriter, r *http.Request) {
	var body roleBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := h.svc.Members.ChangeRole(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "userID"), body.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, memberToAPI(*m))
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Members.RemoveMember(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "userID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// === Invitations ===

type createInvitationBody struct {
	InviteeID string `json:"invitee_id"`
	Role      string `json:"role"`
}

func (h *Handler) createInvitation(w http.ResponseWriter, r *http.Request) {
	var body createInvitationBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	inv, err := h.svc.Invitations.Create(r.Context(), domain.CreateInvitationRequest{
		ProjectID: chi.URLParam(r, "projectID"),
		InviteeID: body.InviteeID,
		Role:      domain.ProjectRole(body.Role),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, invitationToAPI(*inv))
}

func (h *Handler) listProjectInvitations(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	invs, total, err := h.svc.Invitations.ListForProject(r.Context(), chi.URLParam(r, "projectID"), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(invs, total, page, invitationToAPI))
}

func (h *Handler) listMyInvitations(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	invs, total, err := h.svc.Invitations.ListMine(r.Context(), r.URL.Query().Get("status"), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(invs, total, page, invitationToAPI))
}

func (h *Handler) getInvitation(w http.ResponseWriter, r *http.Request) {
	inv, err := h.svc.Invitations.Get(r.Context(), chi.URLParam(r, "invitationID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invitationToAPI(*inv))
}

func (h *Handler) respondInvitation(w http.ResponseWriter, r *http.Request) {
	var body decisionBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	inv, err := h.svc.Invitations.Respond(r.Context(), chi.URLParam(r, "invitationID"), body.Decision)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invitationToAPI(*inv))
}
