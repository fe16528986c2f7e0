package domain

import "time"

// User represents a customer listed in the user table.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}
