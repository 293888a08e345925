package storage

import "errors"

// NotFoundError is returned when a record doesn't exist in the store.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return "record not found"
	}

	return "record not found: " + string(e.Kind) + "/" + e.ID
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
