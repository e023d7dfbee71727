package repository

import "time"

// Submission statuses shared by contacts and print jobs.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// SessionValue represents a persisted session hand-off entry.
type SessionValue struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Contact represents a contact submission row.
type Contact struct {
	ID        string
	SessionID string
	Name      string
	Phone     string
	Status    string
	Error     *string
	RemoteID  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PrintJob represents a print submission row.
type PrintJob struct {
	ID        string
	SessionID string
	Printer   string
	Size      string
	Status    string
	Message   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
