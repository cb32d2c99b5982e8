package profile

import (
	"fmt"
	"strings"
	"time"
)

// User is the single administrator profile the console is signed in as.
type User struct {
	ID         int       `json:"Id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Position   string    `json:"position"`
	Department string    `json:"department"`
	Bio        string    `json:"bio"`
	JoinDate   string    `json:"joinDate"`
	Avatar     string    `json:"avatar"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (u User) RecordID() int { return u.ID }

func (u User) WithID(id int) User {
	u.ID = id
	return u
}

func (u User) Clone() User { return u }

func (u User) Validate() error {
	if strings.TrimSpace(u.FirstName) == "" {
		return fmt.Errorf("firstName is required")
	}
	if strings.TrimSpace(u.LastName) == "" {
		return fmt.Errorf("lastName is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("email is required")
	}
	return nil
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Initials returns the upper-cased first letters of the first and last name.
func (u User) Initials() string {
	var b strings.Builder
	for _, part := range []string{u.FirstName, u.LastName} {
		part = strings.TrimSpace(part)
		if part != "" {
			b.WriteString(strings.ToUpper(part[:1]))
		}
	}
	return b.String()
}
