package uc

import "errors"

var (
	ErrApplicationNotFound = errors.New("application not found")
	// ErrConcurrentReview means another review changed the row first.
	ErrConcurrentReview = errors.New("application was reviewed concurrently")
	// ErrReferenceMissing means the customer or reason vanished before insert.
	ErrReferenceMissing = errors.New("referenced customer or reason no longer exists")
	// ErrCustomerFlagChanged means an approval flipped is_default between the
	// use case's check and the insert.
	ErrCustomerFlagChanged = errors.New("customer default flag changed")
)
