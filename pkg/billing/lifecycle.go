package billing

import (
	"context"
	"time"
)

// Operation is a lifecycle event applied to an existing subscription.
type Operation string

const (
	OpCancel Operation = "cancel"
	OpPause  Operation = "pause"
	OpResume Operation = "resume"

	opCreate Operation = "create"
)

func (o Operation) String() string { return string(o) }

// statusNew is the pseudo-state a subscription occupies before creation.
const statusNew Status = ""

// Guard evaluates whether a transition applies to the given request.
type Guard func(ctx context.Context, from Status, op Operation, req TransitionRequest) bool

// TransitionRequest carries the runtime facts guards decide on.
type TransitionRequest struct {
	PaymentReady bool
	TrialPeriod  time.Duration
}

// Transition defines a status change triggered by an operation.
// All guards must pass for the transition to be taken.
type Transition struct {
	From   Status
	To     Status
	Op     Operation
	Guards []Guard
}

// Lifecycle is the subscription state machine shared by every backend.
// Transitions for the same status and operation are evaluated in
// declaration order; the first one whose guards pass wins.
// A Lifecycle is immutable after construction and safe for concurrent use.
type Lifecycle struct {
	transitions map[Status]map[Operation][]Transition
}

// IsPaymentReady passes when the customer has a usable payment method.
func IsPaymentReady(_ context.Context, _ Status, _ Operation, req TransitionRequest) bool {
	return req.PaymentReady
}

// HasTrial passes when a positive trial period was requested.
func HasTrial(_ context.Context, _ Status, _ Operation, req TransitionRequest) bool {
	return req.TrialPeriod > 0
}

// settledStatuses are every status past incomplete. They share one
// transition row: cancel ends, pause pauses and resume activates.
var settledStatuses = []Status{
	StatusActive,
	StatusTrialing,
	StatusPastDue,
	StatusUnpaid,
	StatusPaused,
	StatusCanceled,
	StatusIncompleteExpired,
}

// NewLifecycle builds the standard subscription lifecycle.
func NewLifecycle() *Lifecycle {
	l := &Lifecycle{transitions: make(map[Status]map[Operation][]Transition)}

	l.add(Transition{From: statusNew, To: StatusTrialing, Op: opCreate, Guards: []Guard{IsPaymentReady, HasTrial}})
	l.add(Transition{From: statusNew, To: StatusActive, Op: opCreate, Guards: []Guard{IsPaymentReady}})
	l.add(Transition{From: statusNew, To: StatusIncomplete, Op: opCreate})

	l.add(Transition{From: StatusIncomplete, To: StatusIncompleteExpired, Op: OpCancel})
	l.add(Transition{From: StatusIncomplete, To: StatusIncomplete, Op: OpPause})
	l.add(Transition{From: StatusIncomplete, To: StatusIncomplete, Op: OpResume})

	for _, s := range settledStatuses {
		l.add(Transition{From: s, To: StatusCanceled, Op: OpCancel})
		l.add(Transition{From: s, To: StatusPaused, Op: OpPause})
		l.add(Transition{From: s, To: StatusActive, Op: OpResume})
	}

	return l
}

func (l *Lifecycle) add(t Transition) {
	if l.transitions[t.From] == nil {
		l.transitions[t.From] = make(map[Operation][]Transition)
	}
	l.transitions[t.From][t.Op] = append(l.transitions[t.From][t.Op], t)
}

func (l *Lifecycle) fire(ctx context.Context, from Status, op Operation, req TransitionRequest) (Status, bool) {
	for _, t := range l.transitions[from][op] {
		passed := true
		for _, guard := range t.Guards {
			if !guard(ctx, from, op, req) {
				passed = false
				break
			}
		}
		if passed {
			return t.To, true
		}
	}
	return "", false
}

// Initial returns the status a new subscription starts in.
// A trial requested for a customer without a payment method is ignored.
func (l *Lifecycle) Initial(ctx context.Context, paymentReady bool, trialPeriod time.Duration) Status {
	to, ok := l.fire(ctx, statusNew, opCreate, TransitionRequest{
		PaymentReady: paymentReady,
		TrialPeriod:  trialPeriod,
	})
	if !ok {
		return StatusIncomplete
	}
	return to
}

// Next returns the status reached by applying op in status from,
// or a *StateError when from is not a known status.
func (l *Lifecycle) Next(ctx context.Context, from Status, op Operation) (Status, error) {
	to, ok := l.fire(ctx, from, op, TransitionRequest{})
	if !ok {
		return "", &StateError{Status: from, Op: op}
	}
	return to, nil
}

// CanApply reports whether op has a transition from status from.
func (l *Lifecycle) CanApply(ctx context.Context, from Status, op Operation) bool {
	_, ok := l.fire(ctx, from, op, TransitionRequest{})
	return ok
}

// Apply returns a copy of sub moved to the next status for op.
// The returned *StateError carries the subscription id.
func (l *Lifecycle) Apply(ctx context.Context, sub Subscription, op Operation) (Subscription, error) {
	to, err := l.Next(ctx, sub.Status, op)
	if err != nil {
		return Subscription{}, &StateError{SubscriptionID: sub.ID, Status: sub.Status, Op: op}
	}
	sub.Status = to
	return sub, nil
}

// IsNoop reports whether applying op from status from leaves the status unchanged.
func (l *Lifecycle) IsNoop(ctx context.Context, from Status, op Operation) bool {
	to, ok := l.fire(ctx, from, op, TransitionRequest{})
	return ok && to == from
}
