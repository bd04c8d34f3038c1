package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Status is what the user does for a living.
type Status string

const (
	StatusUnset    Status = ""
	StatusStudying Status = "Estudia"
	StatusWorking  Status = "Trabaja"
)

// Valid reports whether s is one of the known values, unset included.
func (s Status) Valid() bool {
	switch s {
	case StatusUnset, StatusStudying, StatusWorking:
		return true
	}
	return false
}

// ParseStatus accepts "studying"/"working" or the stored values.
func ParseStatus(v string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "studying", "student", "estudia":
		return StatusStudying, true
	case "working", "worker", "trabaja":
		return StatusWorking, true
	case "":
		return StatusUnset, true
	}
	return "", false
}

// MarshalJSON encodes an unset status as null.
func (s Status) MarshalJSON() ([]byte, error) {
	if s == StatusUnset {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

// UnmarshalJSON decodes null as unset.
func (s *Status) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = StatusUnset
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("parsing status: %w", err)
	}
	*s = Status(v)
	return nil
}

// User is a registered account. Password holds a bcrypt hash, or plaintext
// for records written before hashing was introduced.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Password  string     `json:"password,omitempty"`
	BirthDate *time.Time `json:"birthDate"`
	Status    Status     `json:"status"`
	Name      string     `json:"name,omitempty"`
}

// Public returns a copy without the password, suitable for the session record.
func (u User) Public() User {
	u.Password = ""
	return u
}

// DisplayName returns Name, falling back to Email.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// RegisterParams holds the fields collected by the registration flow.
type RegisterParams struct {
	Email     string
	Password  string
	BirthDate *time.Time
	Status    Status
	Name      string
}

// Validate requires every field except Name.
func (p RegisterParams) Validate() error {
	var errs ValidationErrors

	email := strings.TrimSpace(p.Email)
	if email == "" {
		errs = append(errs, ValidationError{Field: "email", Description: "email is required"})
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs = append(errs, ValidationError{Field: "email", Description: fmt.Sprintf("invalid email %q", email)})
	}

	if p.Password == "" {
		errs = append(errs, ValidationError{Field: "password", Description: "password is required"})
	}

	if p.BirthDate == nil || p.BirthDate.IsZero() {
		errs = append(errs, ValidationError{Field: "birthDate", Description: "birth date is required"})
	} else if p.BirthDate.After(time.Now()) {
		errs = append(errs, ValidationError{Field: "birthDate", Description: "birth date is in the future"})
	}

	if p.Status == StatusUnset {
		errs = append(errs, ValidationError{Field: "status", Description: "status is required"})
	} else if !p.Status.Valid() {
		errs = append(errs, ValidationError{Field: "status", Description: fmt.Sprintf("unknown status %q", p.Status)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
