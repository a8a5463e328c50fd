package domain

import "time"

// User represents an authenticable account. The password hash is never
// serialized; response shapes are built explicitly in the HTTP layer.
type User struct {
	ID           int
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
}
