package model

import "time"

// Status is the lifecycle tag of a contact message.
//
// The intended triage flow is new → read → replied/archived, with failed set
// automatically when the operator notification could not be delivered. The
// server validates that a written status is a member of the canonical set but
// does not enforce transition order; a failed message may be replied to
// directly, which moves it to replied.
type Status string

const (
	StatusNew      Status = "new"
	StatusRead     Status = "read"
	StatusReplied  Status = "replied"
	StatusArchived Status = "archived"
	StatusFailed   Status = "failed"

	// StatusSpam is reserved in the schema but no flow writes it yet.
	StatusSpam Status = "spam"
)

// Valid reports whether s is one of the statuses an admin may write.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusRead, StatusReplied, StatusArchived, StatusFailed:
		return true
	}
	return false
}

// Message represents a single contact form submission and its moderation state.
type Message struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Subject       string    `json:"subject,omitempty"`
	Message       string    `json:"message"`
	Status        Status    `json:"status"`
	IP            string    `json:"ip,omitempty"`
	UserAgent     string    `json:"userAgent,omitempty"`
	DeliveryError string    `json:"deliveryError,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ListOptions carries filter and pagination parameters for listing messages.
type ListOptions struct {
	// Status filters by message status. Empty string and "all" return all messages.
	Status string
	Limit  int
	Offset int
}

// Pagination describes the page window returned by a list call.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Stats aggregates message counts per status for the admin dashboard.
type Stats struct {
	Total    int `json:"totalMessages"`
	New      int `json:"newMessages"`
	Read     int `json:"readMessages"`
	Replied  int `json:"repliedMessages"`
	Archived int `json:"archivedMessages"`
	Failed   int `json:"failedMessages"`
}
