package service

import "errors"

// Request-scoped domain errors. All are recoverable at the request
// boundary; the API layer maps them to HTTP status codes.
var (
	ErrNotFound            = errors.New("entity not found")
	ErrForbidden           = errors.New("operation not permitted")
	ErrInvalidCategory     = errors.New("invalid expense category")
	ErrInvalidRange        = errors.New("start date is after end date")
	ErrAlreadyMember       = errors.New("user is already a member of the group")
	ErrNotAMember          = errors.New("user is not a member of the group")
	ErrInvitePending       = errors.New("an invitation is already pending for this user")
	ErrNoPendingInvitation = errors.New("no pending invitation for this group")
)
