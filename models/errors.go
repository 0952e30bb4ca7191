package models

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated       = errors.New("not logged in")
	ErrForbidden             = errors.New("forbidden")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrDuplicateUsername     = errors.New("username already taken")
	ErrItemNotFound          = errors.New("item not found")
	ErrInsufficientStock     = errors.New("not enough stock")
	ErrMenuItemNotFound      = errors.New("menu item not found")
	ErrMenuItemInUse         = errors.New("menu item is referenced by existing orders")
	ErrAlreadyAdmin          = errors.New("you are already an admin")
	ErrRequestAlreadyPending = errors.New("request already pending")
	ErrRequestNotFound       = errors.New("request not found")
	ErrRequestNotPending     = errors.New("request is no longer pending")
)

// ItemError ties an order failure to the menu item that caused it.
type ItemError struct {
	Err    error
	ItemID int64
}

func (e *ItemError) Error() string {
	switch e.Err {
	case ErrItemNotFound:
		return fmt.Sprintf("Item %d not found", e.ItemID)
	case ErrInsufficientStock:
		return fmt.Sprintf("Not enough stock for item %d", e.ItemID)
	}
	return fmt.Sprintf("item %d: %v", e.ItemID, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// RequestError is an ErrInvalidRequest carrying a client-facing reason.
type RequestError struct {
	Reason string
}

func (e *RequestError) Error() string {
	return e.Reason
}

func (e *RequestError) Is(target error) bool {
	return target == ErrInvalidRequest
}

func InvalidRequest(reason string) error {
	return &RequestError{Reason: reason}
}
