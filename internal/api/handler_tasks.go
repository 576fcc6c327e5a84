package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"taskflow/internal/domain"
)

type createTaskBody struct {
	ProjectID   string  `json:"project_id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	AssigneeID  *string `json:"assignee_id,omitempty"`
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var body createTaskBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	t, err := h.svc.Tasks.Create(r.Context(), domain.CreateTaskRequest{
		ProjectID:   body.ProjectID,
		Title:       body.Title,
		Description: body.Description,
		AssigneeID:  body.AssigneeID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, taskToAPI(*t))
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Tasks.Get(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, taskToAPI(*t))
}

type reassignBody struct {
	NewAssigneeID string `json:"new_assignee_id"`
	Comment       string `json:"comment,omitempty"`
}

func (b reassignBody) request(taskID string) domain.CreateReassignRequest {
	return domain.CreateReassignRequest{TaskID: taskID, NewAssigneeID: b.NewAssigneeID, Comment: b.Comment}
}

// reassignTask answers 200 with the updated task for a direct reassignment
// and 202 with the pending request otherwise.
func (h *Handler) reassignTask(w http.ResponseWriter, r *http.Request) {
	var body reassignBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.svc.Reassign.Reassign(r.Context(), body.request(chi.URLParam(r, "taskID")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if out.Direct() {
		t := taskToAPI(*out.Task)
		writeJSON(w, http.StatusOK, ReassignResult{Direct: true, Task: &t})
		return
	}
	req := reassignToAPI(*out.Request)
	writeJSON(w, http.StatusAccepted, ReassignResult{Request: &req})
}

func (h *Handler) requestReassign(w http.ResponseWriter, r *http.Request) {
	var body reassignBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := h.svc.Reassign.RequestReassign(r.Context(), body.request(chi.URLParam(r, "taskID")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reassignToAPI(*req))
}

func (h *Handler) getReassign(w http.ResponseWriter, r *http.Request) {
	req, err := h.svc.Reassign.Get(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reassignToAPI(*req))
}

func (h *Handler) reviewReassign(w http.ResponseWriter, r *http.Request) {
	var body decisionBody
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := h.svc.Reassign.Review(r.Context(), chi.URLParam(r, "requestID"), body.Decision)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reassignToAPI(*req))
}

func (h *Handler) listPendingReassigns(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	reqs, total, err := h.svc.Reassign.ListPending(r.Context(), chi.URLParam(r, "projectID"), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(reqs, total, page, reassignToAPI))
}

// === Notifications ===

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	unread, err := boolQuery(r, "unread")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items, total, err := h.svc.Notifications.ListMine(r.Context(), unread, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(items, total, page, notificationToAPI))
}

func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Notifications.MarkRead(r.Context(), chi.URLParam(r, "notificationID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Notifications.MarkAllRead(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"marked": n})
}
