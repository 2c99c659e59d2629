package domain

import (
	"fmt"
	"group-lab/errors"
)

// Kind classifies the result of a group operation. KindInvalidRole goes
// beyond the five failure kinds of the group rules: it rejects a join with
// a role that no operation may assign, such as banned.
type Kind int

const (
	KindOK Kind = iota
	KindAgeRestriction
	KindAlreadyMember
	KindPermissionDenied
	KindNotAuthorized
	KindNotFound
	KindInvalidRole
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "OK"
	case KindAgeRestriction:
		return "AgeRestriction"
	case KindAlreadyMember:
		return "AlreadyMember"
	case KindPermissionDenied:
		return "PermissionDenied"
	case KindNotAuthorized:
		return "NotAuthorized"
	case KindNotFound:
		return "NotFound"
	case KindInvalidRole:
		return "InvalidRole"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is the result of a Group operation: a kind plus the status line a
// caller may display. Rendering is left to the caller.
type Outcome struct {
	Kind   Kind
	Status string
}

func (o Outcome) OK() bool { return o.Kind == KindOK }

// Err returns nil for a successful outcome, otherwise the sentinel of its
// kind wrapped with the status line.
func (o Outcome) Err() error {
	var sentinel error
	switch o.Kind {
	case KindOK:
		return nil
	case KindAgeRestriction:
		sentinel = errors.ErrAgeRestriction
	case KindAlreadyMember:
		sentinel = errors.ErrAlreadyMember
	case KindPermissionDenied:
		sentinel = errors.ErrPermissionDenied
	case KindNotAuthorized:
		sentinel = errors.ErrNotAuthorized
	case KindNotFound:
		sentinel = errors.ErrNotFound
	case KindInvalidRole:
		sentinel = errors.ErrInvalidRole
	default:
		sentinel = errors.ErrInvalidPayload
	}
	return fmt.Errorf("%w: %s", sentinel, o.Status)
}

func succeeded(format string, args ...any) (Outcome, error) {
	return Outcome{Kind: KindOK, Status: fmt.Sprintf(format, args...)}, nil
}

func failed(kind Kind, format string, args ...any) (Outcome, error) {
	o := Outcome{Kind: kind, Status: fmt.Sprintf(format, args...)}
	return o, o.Err()
}
