// Package testutil provides shared test doubles for domain interfaces.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"taskflow/internal/domain"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// RecordingNotifier implements domain.Notifier and keeps every
// notification it receives. Set Err to simulate a delivery failure.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
	Err  error
}

// Notify implements domain.Notifier.
func (r *RecordingNotifier) Notify(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, *n)
	return nil
}

// Sent returns a copy of the recorded notifications.
func (r *RecordingNotifier) Sent() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Notification, len(r.sent))
	copy(out, r.sent)
	return out
}

// SentTo returns the notifications addressed to recipientID.
func (r *RecordingNotifier) SentTo(recipientID string) []domain.Notification {
	var out []domain.Notification
	for _, n := range r.Sent() {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out
}

// Last returns the most recent notification, or nil if none was sent.
func (r *RecordingNotifier) Last() *domain.Notification {
	sent := r.Sent()
	if len(sent) == 0 {
		return nil
	}
	return &sent[len(sent)-1]
}
