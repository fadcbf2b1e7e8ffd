package models

import "errors"

var (
	// ErrNotFound covers both "resource does not exist" and "resource exists
	// but is not owned by the caller". Ownership-scoped lookups filter by id
	// and organizer in one query, so the two cases are indistinguishable and
	// existence of other users' resources never leaks.
	ErrNotFound = errors.New("not found")

	ErrEmailTaken = errors.New("user already exists with this email")
)
