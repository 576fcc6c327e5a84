package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"taskflow/internal/domain"
	"taskflow/internal/middleware"
)

const maxBodyBytes = 1 << 20

// Error is the JSON body of every non-2xx response.
type Error struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Page wraps a list response.
type Page[T any] struct {
	Items         []T    `json:"items"`
	Total         int64  `json:"total"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

func newPage[T, D any](items []D, total int64, req domain.PageRequest, conv func(D) T) Page[T] {
	out := Page[T]{Items: make([]T, 0, len(items)), Total: total, NextPageToken: req.NextPageToken(total)}
	for _, it := range items {
		out.Items = append(out.Items, conv(it))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err with the status its domain type maps to. Internal
// errors are logged and replaced with a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	msg := err.Error()
	reqID := middleware.RequestIDFromContext(r.Context())
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", reqID, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, Error{Code: status, Message: msg, RequestID: reqID})
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ErrValidation("request body is required")
		}
		return domain.ErrValidation("invalid request body: %v", err)
	}
	if dec.More() {
		return domain.ErrValidation("request body must contain a single JSON object")
	}
	return nil
}

// pageFromQuery reads max_results and page_token.
func pageFromQuery(r *http.Request) (domain.PageRequest, error) {
	q := r.URL.Query()
	p := domain.PageRequest{PageToken: q.Get("page_token")}
	if v := q.Get("max_results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, domain.ErrValidation("max_results must be a non-negative integer")
		}
		p.MaxResults = n
	}
	return p, nil
}

func boolQuery(r *http.Request, key string) (bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, domain.ErrValidation("%s must be a boolean", key)
	}
	return b, nil
}
