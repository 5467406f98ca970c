package model

import (
	"fmt"
	"time"

	"github.com/yshulhan/customers/internal/apperrors"
	"github.com/yshulhan/customers/internal/validation"
)

// Status is customer lifecycle status
type Status string

const (
	// StatusActive means customer is active
	StatusActive Status = "active"
	// StatusSuspended means customer is suspended
	StatusSuspended Status = "suspended"
	// StatusDeleted is reserved for soft-delete, no API action transitions to it
	StatusDeleted Status = "deleted"
)

// ParseStatus parses status from its string representation
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusSuspended, StatusDeleted:
		return Status(s), nil
	default:
		return "", apperrors.NewValidationErr("status", fmt.Sprintf("unknown status %q", s))
	}
}

// Customer is customer model entity
type Customer struct {
	ID           int64      `json:"id" bson:"_id"`
	FirstName    string     `json:"first_name" bson:"first_name"`
	LastName     string     `json:"last_name" bson:"last_name"`
	Email        string     `json:"email" bson:"email"`
	Password     string     `json:"password" bson:"password"`
	Address      string     `json:"address" bson:"address"`
	Status       Status     `json:"status" bson:"status"`
	CreationDate *time.Time `json:"creation_date" bson:"creation_date"`
	LastUpdated  *time.Time `json:"last_updated" bson:"last_updated"`
}

// Validate verifies required fields are present, email matches the expected
// format and status is a known enum member
func (c *Customer) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"first_name", c.FirstName},
		{"last_name", c.LastName},
		{"email", c.Email},
		{"password", c.Password},
		{"address", c.Address},
	}

	for _, r := range required {
		if r.value == "" {
			return apperrors.NewValidationErr(r.field, fmt.Sprintf("missing required field %s", r.field))
		}
	}

	if !validation.ValidEmail(c.Email) {
		return apperrors.NewValidationErr("email", fmt.Sprintf("invalid email format %q", c.Email))
	}

	if _, err := ParseStatus(string(c.Status)); err != nil {
		return err
	}
	return nil
}

// PatchCustomer carries a partial update, only non-nil fields are applied
type PatchCustomer struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Address   *string `json:"address"`
	Status    *string `json:"status"`
}

// ApplyPatch mutates only the fields present in the patch. An unknown status
// value fails the call, field mutations applied before the status check stay
// in place - nothing is persisted on failure, so the store never sees them.
func (c *Customer) ApplyPatch(patch PatchCustomer) error {
	if patch.FirstName != nil {
		c.FirstName = *patch.FirstName
	}

	if patch.LastName != nil {
		c.LastName = *patch.LastName
	}

	if patch.Email != nil {
		c.Email = *patch.Email
	}

	if patch.Password != nil {
		c.Password = *patch.Password
	}

	if patch.Address != nil {
		c.Address = *patch.Address
	}

	if patch.Status != nil {
		status, err := ParseStatus(*patch.Status)
		if err != nil {
			return err
		}
		c.Status = status
	}
	return nil
}
