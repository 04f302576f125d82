package service

import "errors"

// Sentinel errors returned by the services. Handlers map them to HTTP
// statuses: not-found family to 404, conflicts to 409, validation to 400,
// authorization to 403.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrMemberNotFound  = errors.New("chat member not found")
	ErrRequestNotFound = errors.New("join request not found")
	ErrShareNotFound   = errors.New("share link not found")

	ErrAlreadyResponded = errors.New("join request already responded to")
	ErrMemberRemoved    = errors.New("chat member already removed")

	ErrInvalidIdentity = errors.New("exactly one of user ID or guest name must be set")
	ErrInvalidContent  = errors.New("invalid message content")
	ErrCreatorViaShare = errors.New("project creator cannot join through a share link")
	ErrShareInactive   = errors.New("share link is revoked")
	ErrShareExpired    = errors.New("share link has expired")
	ErrShareNoChat     = errors.New("share link does not grant chat access")

	ErrNotProjectCreator = errors.New("only the project creator may perform this action")

	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
