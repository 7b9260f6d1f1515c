package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// User is an account that can own notes.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Credentials is an email/password pair submitted at login or sign-up.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize lower-cases and trims the email.
func (c *Credentials) Normalize() {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
}

// Validate validates the credentials.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password, validation.Required, validation.Length(8, 72)),
	)
}
