package models

import (
	"time"
)

// User represents the users table in the database. Collections are owned by
// a user; a seeded default user owns everything when no session is present.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
