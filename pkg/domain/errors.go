package domain

import (
	"errors"
	"fmt"
)

// ErrAlreadyLeased is matched by errors.Is for every AlreadyLeasedError.
var ErrAlreadyLeased = errors.New("lease acquired by another process")

// ErrRetriesExhausted is returned by a Locker when it gave up retrying
// because another holder kept the lock for the whole retry window.
var ErrRetriesExhausted = errors.New("exceeded max retry count")

// ErrInvalidTTL is returned when a lease TTL is below one millisecond.
// Such a lease would either never expire or be rounded by the datastore.
var ErrInvalidTTL = errors.New("ttl must be at least 1ms")

// ErrAlreadyListening is returned when Listen is called on a listener that
// is listening or has been stopped.
var ErrAlreadyListening = errors.New("listener already started")

// ConfigError reports an invalid or missing configuration value.
// It is returned synchronously by constructors and is never recoverable.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// AlreadyLeasedError is returned when another holder owns the lease for Key.
// It signals expected contention, not an infrastructure fault.
type AlreadyLeasedError struct {
	Key string
}

func (e *AlreadyLeasedError) Error() string {
	return fmt.Sprintf("lease acquired by another process: %s", e.Key)
}

// Is lets errors.Is(err, ErrAlreadyLeased) match.
func (e *AlreadyLeasedError) Is(target error) bool {
	return target == ErrAlreadyLeased
}

// LeaseError wraps an unexpected failure while acquiring the lease for Key.
type LeaseError struct {
	Key string
	Err error
}

func (e *LeaseError) Error() string {
	return fmt.Sprintf("could not acquire lease for %s: %v", e.Key, e.Err)
}

func (e *LeaseError) Unwrap() error {
	return e.Err
}

// ErrNotFound is returned when a hash field or key does not exist.
var ErrNotFound = errors.New("not found")
