package user

import (
	"context"
	"errors"
)

var (
	// ErrDuplicateEmail is returned when registering an email that already exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNotFound is returned when no user matches a lookup.
	ErrNotFound = errors.New("user not found")
	// ErrInvalid is returned when a required field is empty.
	ErrInvalid = errors.New("name, email and location are required")
)

// User is a registered recipient. Email is the immutable identity key;
// location is free text and mutable. Users are never hard-deleted.
type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Location string `json:"location" gorm:"not null"`
}

// Directory is the durable store of registered users. It supplies the batch
// sweep's work list and single-user lookups for the interactive flow.
type Directory interface {
	Create(ctx context.Context, name, email, location string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	UpdateLocation(ctx context.Context, id uint, location string) (User, error)
	ListAll(ctx context.Context) ([]User, error)
}
