package entity

import "time"

const (
	DefaultLastName = "lastName"
	DefaultLocation = "My City"
)

// User represents an account row in the `users` table.
// PasswordHash is never serialized.
type User struct {
	ID           int64     `db:"id" json:"-"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	LastName     string    `db:"last_name" json:"lastName"`
	Location     string    `db:"location" json:"location"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
	UpdatedAt    time.Time `db:"updated_at" json:"-"`
}

// Profile is the public view returned alongside a fresh token.
type Profile struct {
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email"`
	Location string `json:"location"`
	Token    string `json:"token"`
}

// ProfileOf builds the public view of u.
func ProfileOf(u *User, token string) Profile {
	return Profile{Name: u.Name, LastName: u.LastName, Email: u.Email, Location: u.Location, Token: token}
}
