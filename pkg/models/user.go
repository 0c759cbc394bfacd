package models

import (
	"github.com/uptrace/bun"
)

// User roles.
const (
	RoleReader    = "reader"
	RoleLibrarian = "librarian"
	RoleAdmin     = "admin"
)

// DefaultMaxBooks is the borrowing cap applied when none is given.
const DefaultMaxBooks = 5

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	Username     string  `bun:"username,pk" json:"username"`
	Email        string  `bun:"email" json:"email"`
	FullName     string  `bun:"full_name" json:"full_name"`
	Phone        *string `bun:"phone" json:"phone"`
	CardNumber   *string `bun:"card_number" json:"card_number"`
	Role         string  `bun:"role,nullzero" json:"role"`
	MaxBooks     int     `bun:"max_books" json:"max_books"`
	PasswordHash string  `bun:"password_hash" json:"-"` // Never expose the hash
}

// IsValidRole reports whether s is one of the three known roles.
func IsValidRole(s string) bool {
	return s == RoleReader || s == RoleLibrarian || s == RoleAdmin
}
