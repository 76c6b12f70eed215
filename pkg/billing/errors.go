package billing

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("billing entity not found")
	ErrUnknownStatus = errors.New("unknown subscription status")
	ErrInvalidState  = errors.New("operation not allowed in current subscription state")
	ErrInvalidInput  = errors.New("invalid billing request")
	ErrProvider      = errors.New("billing provider error")
)

// Kind identifies the entity a NotFoundError refers to.
type Kind string

const (
	KindCustomer     Kind = "customer"
	KindSubscription Kind = "subscription"
)

// NotFoundError reports a missing customer or subscription.
// It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound builds a NotFoundError for the given entity kind and id.
func NotFound(kind Kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsNotFound reports whether err is a NotFoundError of the given kind.
func IsNotFound(err error, kind Kind) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) && nf.Kind == kind
}

// NotFoundID returns the id carried by a NotFoundError in err's chain.
func NotFoundID(err error) (string, bool) {
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		return "", false
	}
	return nf.ID, true
}

// StatusError reports a provider status outside the known vocabulary.
// It indicates a stale mapping table and is never coerced to a known status.
type StatusError struct {
	Value string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unknown subscription status: %q", e.Value)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnknownStatus
}

// StateError reports a lifecycle operation with no transition from the
// subscription's current status.
type StateError struct {
	SubscriptionID string
	Status         Status
	Op             Operation
}

func (e *StateError) Error() string {
	if e.SubscriptionID == "" {
		return fmt.Sprintf("cannot %s subscription in status '%s'", e.Op, e.Status)
	}
	return fmt.Sprintf("cannot %s subscription '%s' in status '%s'", e.Op, e.SubscriptionID, e.Status)
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}
