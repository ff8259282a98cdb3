package domain

import "errors"

var (
	ErrNotFound        = errors.New("student not found")
	ErrDuplicateID     = errors.New("student id already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrStoreUnreadable = errors.New("attendance store unreadable")
	ErrSaveFailed      = errors.New("saving attendance records failed")
)
