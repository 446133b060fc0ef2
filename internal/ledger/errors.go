package ledger

import "fmt"

// ValidationError reports malformed or out-of-range input. It names the
// offending field so the caller can fix the request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports that a referenced entity is absent or not owned by
// the acting user. The two cases are deliberately indistinguishable.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// ConflictError reports a storage-level transaction conflict. The operation
// did not commit and may be retried once by the caller.
type ConflictError struct {
	Op  string
	Err error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: conflicting ledger update: %v", e.Op, e.Err)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}
