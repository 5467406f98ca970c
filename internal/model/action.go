package model

import (
	"fmt"

	"github.com/yshulhan/customers/internal/apperrors"
)

// Action is a status transition requested through the API
type Action string

const (
	// ActionActivate transitions customer to active status
	ActionActivate Action = "activate"
	// ActionSuspend transitions customer to suspended status
	ActionSuspend Action = "suspend"
)

// ParseAction parses action from its string representation
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionActivate, ActionSuspend:
		return Action(s), nil
	default:
		return "", apperrors.NewValidationErr("action", fmt.Sprintf("unknown action %q", s))
	}
}

// TargetStatus returns the status the action transitions a customer to
func (a Action) TargetStatus() Status {
	if a == ActionSuspend {
		return StatusSuspended
	}
	return StatusActive
}
