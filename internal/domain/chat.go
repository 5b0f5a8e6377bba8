package domain

import "time"

// ChatRecord is one persisted request/response pair. Records are written
// once per successful relay and never updated or deleted.
type ChatRecord struct {
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"createdAt"`
}
