package models

import "time"

// Announcement is an admin-published campus notice.
type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  string    `json:"priority"` // normal|important|urgent
	Timestamp int64     `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}
