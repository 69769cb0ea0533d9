package domain

import (
	"errors"
	"strings"
)

var (
	ErrEmptyUsername = errors.New("username is required")
	ErrEmptyPassword = errors.New("password is required")
)

// Employee is a staff member allowed to sign in to the terminal. Password
// holds whatever the configured credential verifier stores.
type Employee struct {
	ID       string
	Username string
	Password string
}

// NewEmployee builds an employee ensuring required invariants.
func NewEmployee(id, username, password string) (*Employee, error) {
	employee := &Employee{ID: id}
	if err := employee.SetUsername(username); err != nil {
		return nil, err
	}
	if err := employee.SetPassword(password); err != nil {
		return nil, err
	}
	return employee, nil
}

// SetUsername trims and validates the username.
func (e *Employee) SetUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrEmptyUsername
	}
	e.Username = username
	return nil
}

// SetPassword rejects blank passwords.
func (e *Employee) SetPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	e.Password = password
	return nil
}
