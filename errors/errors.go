package errors

import "fmt"

// Group policy outcomes
var (
	ErrAgeRestriction   = fmt.Errorf("age restriction")
	ErrAlreadyMember    = fmt.Errorf("already a member")
	ErrPermissionDenied = fmt.Errorf("permission denied")
	ErrNotAuthorized    = fmt.Errorf("not authorized")
	ErrNotFound         = fmt.Errorf("not found")
	ErrInvalidRole      = fmt.Errorf("invalid role")
)

var (
	ErrGroupNotFound     = fmt.Errorf("group not found")
	ErrUserNotFound      = fmt.Errorf("user not found")
	ErrUserAlreadyExists = fmt.Errorf("user already exists")
	ErrInvalidUser       = fmt.Errorf("invalid user")
	ErrNotMutualContacts = fmt.Errorf("users are not mutual contacts")
	ErrInvalidPayload    = fmt.Errorf("invalid payload")
	ErrEmptyWords        = fmt.Errorf("no words have been found")
)
