package resource

import (
	"errors"
	"fmt"
)

// Kind classifies a resource failure.
type Kind int

const (
	// KindInvalidDownloaded means fetched bytes could not be decoded as UTF-8.
	KindInvalidDownloaded Kind = iota + 1
	// KindInvalidLocal means local file bytes could not be decoded as UTF-8.
	KindInvalidLocal
	// KindInaccessibleLocal means a local file is missing or access was denied.
	KindInaccessibleLocal
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidDownloaded:
		return "invalid downloaded resource"
	case KindInvalidLocal:
		return "invalid local resource"
	case KindInaccessibleLocal:
		return "inaccessible local resource"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrInvalidDownloaded = errors.New("invalid downloaded resource")
	ErrInvalidLocal      = errors.New("invalid local resource")
	ErrInaccessibleLocal = errors.New("inaccessible local resource")
)

// Error reports a resource that could not be turned into text.
// Raw holds the undecodable bytes when there were any.
type Error struct {
	Kind     Kind
	Location string
	Raw      []byte
	Err      error
}

// Error formats the failure with its location.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Kind, e.Location, e.Err)
	}
	return fmt.Sprintf("%s %s (%d bytes)", e.Kind, e.Location, len(e.Raw))
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrInvalidDownloaded:
		return e.Kind == KindInvalidDownloaded
	case ErrInvalidLocal:
		return e.Kind == KindInvalidLocal
	case ErrInaccessibleLocal:
		return e.Kind == KindInaccessibleLocal
	}
	return false
}

var (
	errNotUTF8 = errors.New("not valid UTF-8")
	errIsDir   = errors.New("is a directory")
)
