package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

const (
	fieldCustomerID  = "customer_id"
	fieldStatus      = "status"
	fieldTrialEndsAt = "trial_ends_at"
)

// Subscriptions stores subscriptions as Redis hashes indexed per customer.
type Subscriptions struct {
	store *store
}

var _ billing.Subscriptions = (*Subscriptions)(nil)

// List returns the customer's subscriptions in creation order. The index
// outlives the customer record.
func (s *Subscriptions) List(ctx context.Context, customerID string) ([]billing.Subscription, error) {
	ids, err := s.store.client.ZRange(ctx, s.store.customerSubsKey(customerID), 0, -1).Result()
	if err != nil {
		return nil, errors.Join(billing.ErrProvider, err)
	}
	if len(ids) == 0 {
		return []billing.Subscription{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	if _, err := s.store.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = p.HGetAll(ctx, s.store.subscriptionKey(id))
		}
		return nil
	}); err != nil {
		return nil, errors.Join(billing.ErrProvider, err)
	}

	out := make([]billing.Subscription, 0, len(ids))
	for i, id := range ids {
		fields := cmds[i].Val()
		if len(fields) == 0 {
			continue
		}
		sub, err := decodeSubscription(id, fields)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *Subscriptions) Get(ctx context.Context, id string) (billing.Subscription, error) {
	return s.store.getSubscription(ctx, s.store.client, id)
}

func (s *Subscriptions) Create(ctx context.Context, req billing.NewSubscription) (billing.Subscription, error) {
	if err := req.Validate(); err != nil {
		return billing.Subscription{}, err
	}

	var sub billing.Subscription
	customerKey := s.store.customerKey(req.CustomerID)
	err := s.store.watch(ctx, func(tx *redis.Tx) error {
		customer, err := s.store.getCustomer(ctx, tx, req.CustomerID)
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

		seq, err := tx.Incr(ctx, s.store.seqKey()).Result()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, s.store.subscriptionKey(sub.ID), encodeSubscription(sub)...)
			p.ZAdd(ctx, s.store.customerSubsKey(sub.CustomerID), redis.Z{Score: float64(seq), Member: sub.ID})
			return nil
		})
		return err
	}, customerKey)
	if err != nil {
		return billing.Subscription{}, err
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
	key := s.store.subscriptionKey(id)
	err := s.store.watch(ctx, func(tx *redis.Tx) error {
		var err error
		current, err = s.store.getSubscription(ctx, tx, id)
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
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key, fieldStatus, next.Status.String())
			return nil
		})
		return err
	}, key)
	if err != nil {
		return billing.Subscription{}, err
	}

	s.store.logger.DebugContext(ctx, "subscription transitioned",
		logger.SubscriptionID(id),
		logger.Operation(op.String()),
		slog.String("from", current.Status.String()),
		logger.Status(next.Status.String()),
	)
	return next, nil
}

func (s *store) getSubscription(ctx context.Context, cmd hashReader, id string) (billing.Subscription, error) {
	fields, err := cmd.HGetAll(ctx, s.subscriptionKey(id)).Result()
	if err != nil {
		return billing.Subscription{}, errors.Join(billing.ErrProvider, err)
	}
	if len(fields) == 0 {
		return billing.Subscription{}, billing.NotFound(billing.KindSubscription, id)
	}
	return decodeSubscription(id, fields)
}

// watch runs fn in an optimistic transaction over keys, retrying when a
// watched key changes before EXEC. Billing errors from fn pass through
// untouched; Redis errors are wrapped with billing.ErrProvider.
func (s *store) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for range s.maxRetries {
		err := s.client.Watch(ctx, fn, keys...)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case isBillingError(err):
			return err
		default:
			return errors.Join(billing.ErrProvider, err)
		}
	}
	return errors.Join(billing.ErrProvider, ErrTransactionConflict)
}

func isBillingError(err error) bool {
	return errors.Is(err, billing.ErrNotFound) ||
		errors.Is(err, billing.ErrInvalidState) ||
		errors.Is(err, billing.ErrProvider) ||
		errors.Is(err, billing.ErrInvalidInput)
}

func encodeSubscription(sub billing.Subscription) []any {
	trialEnd := ""
	if sub.TrialEndsAt != nil {
		trialEnd = sub.TrialEndsAt.UTC().Format(time.RFC3339Nano)
	}
	return []any{
		fieldCustomerID, sub.CustomerID,
		fieldStatus, sub.Status.String(),
		fieldTrialEndsAt, trialEnd,
	}
}

func decodeSubscription(id string, fields map[string]string) (billing.Subscription, error) {
	status, err := billing.ParseStatus(fields[fieldStatus])
	if err != nil {
		return billing.Subscription{}, errors.Join(billing.ErrProvider, ErrCorruptRecord, err)
	}

	sub := billing.Subscription{
		ID:         id,
		CustomerID: fields[fieldCustomerID],
		Status:     status,
	}
	if raw := fields[fieldTrialEndsAt]; raw != "" {
		end, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return billing.Subscription{}, errors.Join(billing.ErrProvider, ErrCorruptRecord,
				fmt.Errorf("trial_ends_at %q: %w", raw, err))
		}
		sub.TrialEndsAt = &end
	}
	return sub, nil
}
