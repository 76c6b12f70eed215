package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

const (
	subscriptionColumns     = `id, customer_id, status, trial_ends_at`
	listSubscriptionsQuery  = `SELECT ` + subscriptionColumns + ` FROM billing_subscriptions WHERE customer_id = $1 ORDER BY seq`
	getSubscriptionQuery    = `SELECT ` + subscriptionColumns + ` FROM billing_subscriptions WHERE id = $1`
	insertSubscriptionQuery = `INSERT INTO billing_subscriptions (` + subscriptionColumns + `) VALUES ($1, $2, $3, $4)`
	updateStatusQuery       = `UPDATE billing_subscriptions SET status = $2, updated_at = now() WHERE id = $1`
)

// Subscriptions stores subscriptions in billing_subscriptions.
type Subscriptions struct {
	store *store
}

var _ billing.Subscriptions = (*Subscriptions)(nil)

// List returns the customer's subscriptions in creation order. Rows of
// deleted customers remain listable by the old customer id.
func (s *Subscriptions) List(ctx context.Context, customerID string) ([]billing.Subscription, error) {
	rows, err := s.store.db.Query(ctx, listSubscriptionsQuery, customerID)
	if err != nil {
		return nil, mapError(err, billing.KindSubscription, "")
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (billing.Subscription, error) {
		return scanSubscription(row)
	})
	if err != nil {
		return nil, mapError(err, billing.KindSubscription, "")
	}
	if out == nil {
		out = []billing.Subscription{}
	}
	return out, nil
}

func (s *Subscriptions) Get(ctx context.Context, id string) (billing.Subscription, error) {
	return getSubscription(ctx, s.store.db, id, "")
}

func (s *Subscriptions) Create(ctx context.Context, req billing.NewSubscription) (billing.Subscription, error) {
	if err := req.Validate(); err != nil {
		return billing.Subscription{}, err
	}

	var sub billing.Subscription
	err := pgx.BeginFunc(ctx, s.store.db, func(tx pgx.Tx) error {
		// FOR SHARE keeps the customer row, and its readiness, stable until commit.
		customer, err := getCustomer(ctx, tx, req.CustomerID, "FOR SHARE")
		if err != nil {
			return err
		}

		sub = billing.Subscription{
			ID:         s.store.newID(),
			CustomerID: customer.ID,
			Status:     s.store.lifecycle.Initial(ctx, customer.PaymentReady, req.TrialPeriod),
		}
		if sub.Status == billing.StatusTrialing {
			end := s.store.now().Add(req.TrialPeriod).UTC()
			sub.TrialEndsAt = &end
		}

		_, err = tx.Exec(ctx, insertSubscriptionQuery,
			sub.ID, sub.CustomerID, sub.Status.String(), sub.TrialEndsAt)
		return err
	})
	if err != nil {
		return billing.Subscription{}, mapError(err, billing.KindCustomer, req.CustomerID)
	}

	s.store.logger.DebugContext(ctx, "subscription created",
		logger.CustomerID(sub.CustomerID),
		logger.SubscriptionID(sub.ID),
		logger.Status(sub.Status.String()),
	)
	return sub, nil
}

func (s *Subscriptions) Cancel(ctx context.Context, id string) (billing.Subscription, error) {
	return s.transition(ctx, id, billing.OpCancel)
}

func (s *Subscriptions) Pause(ctx context.Context, id string) (billing.Subscription, error) {
	return s.transition(ctx, id, billing.OpPause)
}

func (s *Subscriptions) Resume(ctx context.Context, id string) (billing.Subscription, error) {
	return s.transition(ctx, id, billing.OpResume)
}

func (s *Subscriptions) transition(ctx context.Context, id string, op billing.Operation) (billing.Subscription, error) {
	var current, next billing.Subscription
	err := pgx.BeginFunc(ctx, s.store.db, func(tx pgx.Tx) error {
		var err error
		current, err = getSubscription(ctx, tx, id, "FOR UPDATE")
		if err != nil {
			return err
		}
		next, err = s.store.lifecycle.Apply(ctx, current, op)
		if err != nil {
			return err
		}
		if next.Status == current.Status {
			return nil
		}
		_, err = tx.Exec(ctx, updateStatusQuery, id, next.Status.String())
		return err
	})
	if err != nil {
		return billing.Subscription{}, mapError(err, billing.KindSubscription, id)
	}

	s.store.logger.DebugContext(ctx, "subscription transitioned",
		logger.SubscriptionID(id),
		logger.Operation(op.String()),
		slog.String("from", current.Status.String()),
		logger.Status(next.Status.String()),
	)
	return next, nil
}

func getSubscription(ctx context.Context, q querier, id, lock string) (billing.Subscription, error) {
	query := getSubscriptionQuery
	if lock != "" {
		query += " " + lock
	}
	sub, err := scanSubscription(q.QueryRow(ctx, query, id))
	if err != nil {
		return billing.Subscription{}, mapError(err, billing.KindSubscription, id)
	}
	return sub, nil
}

func scanSubscription(row pgx.Row) (billing.Subscription, error) {
	var (
		sub      billing.Subscription
		status   string
		trialEnd *time.Time
	)
	if err := row.Scan(&sub.ID, &sub.CustomerID, &status, &trialEnd); err != nil {
		return billing.Subscription{}, err
	}

	parsed, err := billing.ParseStatus(status)
	if err != nil {
		return billing.Subscription{}, errors.Join(billing.ErrProvider, ErrCorruptRecord, err)
	}
	sub.Status = parsed
	if trialEnd != nil {
		end := trialEnd.UTC()
		sub.TrialEndsAt = &end
	}
	return sub, nil
}
