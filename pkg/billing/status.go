package billing

// Status is the canonical subscription status. Values follow the provider's
// lower-case, underscore-separated vocabulary.
type Status string

const (
	StatusIncomplete        Status = "incomplete"
	StatusActive            Status = "active"
	StatusTrialing          Status = "trialing"
	StatusPastDue           Status = "past_due"
	StatusUnpaid            Status = "unpaid"
	StatusPaused            Status = "paused"
	StatusCanceled          Status = "canceled"
	StatusIncompleteExpired Status = "incomplete_expired"
)

var knownStatuses = map[string]Status{
	"active":             StatusActive,
	"canceled":           StatusCanceled,
	"paused":             StatusPaused,
	"incomplete":         StatusIncomplete,
	"incomplete_expired": StatusIncompleteExpired,
	"trialing":           StatusTrialing,
	"past_due":           StatusPastDue,
	"unpaid":             StatusUnpaid,
}

// ParseStatus maps a provider status string to Status.
// Unrecognized values fail with a *StatusError instead of falling back to a default.
func ParseStatus(s string) (Status, error) {
	status, ok := knownStatuses[s]
	if !ok {
		return "", &StatusError{Value: s}
	}
	return status, nil
}

func (s Status) String() string { return string(s) }

// IsTerminal reports whether s ends the subscription's billing. Providers
// may refuse further operations on terminal subscriptions.
func (s Status) IsTerminal() bool {
	return s == StatusCanceled || s == StatusIncompleteExpired
}

// IsCollecting reports whether the subscription is past the incomplete stage
// and not terminal.
func (s Status) IsCollecting() bool {
	switch s {
	case StatusActive, StatusTrialing, StatusPastDue, StatusUnpaid, StatusPaused:
		return true
	}
	return false
}
