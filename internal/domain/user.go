package domain

import "time"

// User is a console account listed in the users table.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	Role         Role
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
