package domain

// User is the identity attached to a session and to every inserted row.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
