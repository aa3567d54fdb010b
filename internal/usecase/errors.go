package usecase

import (
	"errors"
	"fmt"
)

// StoreError marks a tenant-store outage. It is the only error class
// HandleInbound surfaces to callers: the channel adapter must report a
// transport-level failure instead of fabricating a reply.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("tenant store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// DomainError carries a caller mistake (bad channel name, empty message).
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}
