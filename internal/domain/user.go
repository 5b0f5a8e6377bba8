package domain

// User is a registered participant. The ID is derived from the email at
// registration time and never changes afterwards.
type User struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}
