package domain

import "time"

// Severity classifies a notification for display.
type Severity string

// Notification severities.
const (
	SeverityInfo    Severity = "INFO"
	SeveritySuccess Severity = "SUCCESS"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Notification is a message delivered to a single user.
type Notification struct {
	ID          string
	RecipientID string
	Title       string
	Body        string
	Severity    Severity
	LinkPath    *string
	Read        bool
	CreatedAt   time.Time
}
