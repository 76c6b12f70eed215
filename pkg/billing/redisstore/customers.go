package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/paykit/pkg/billing"
	"github.com/dmitrymomot/paykit/pkg/logger"
)

const (
	fieldEmail        = "email"
	fieldPaymentReady = "payment_ready"
)

// Customers stores customers as Redis hashes.
type Customers struct {
	store *store
}

var _ billing.Customers = (*Customers)(nil)

func (c *Customers) List(ctx context.Context) ([]billing.Customer, error) {
	ids, err := c.store.client.ZRange(ctx, c.store.customersKey(), 0, -1).Result()
	if err != nil {
		return nil, errors.Join(billing.ErrProvider, err)
	}
	if len(ids) == 0 {
		return []billing.Customer{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	if _, err := c.store.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = p.HGetAll(ctx, c.store.customerKey(id))
		}
		return nil
	}); err != nil {
		return nil, errors.Join(billing.ErrProvider, err)
	}

	out := make([]billing.Customer, 0, len(ids))
	for i, id := range ids {
		fields := cmds[i].Val()
		if len(fields) == 0 {
			// Deleted between ZRANGE and HGETALL.
			continue
		}
		customer, err := decodeCustomer(id, fields)
		if err != nil {
			return nil, err
		}
		out = append(out, customer)
	}
	return out, nil
}

func (c *Customers) Get(ctx context.Context, id string) (billing.Customer, error) {
	return c.store.getCustomer(ctx, c.store.client, id)
}

func (c *Customers) Create(ctx context.Context, req billing.NewCustomer) (billing.Customer, error) {
	if err := req.Validate(); err != nil {
		return billing.Customer{}, err
	}

	seq, err := c.store.client.Incr(ctx, c.store.seqKey()).Result()
	if err != nil {
		return billing.Customer{}, errors.Join(billing.ErrProvider, err)
	}

	customer := billing.Customer{ID: c.store.newID(), Email: req.Email}
	if _, err := c.store.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, c.store.customerKey(customer.ID),
			fieldEmail, customer.Email,
			fieldPaymentReady, "0",
		)
		p.ZAdd(ctx, c.store.customersKey(), redis.Z{Score: float64(seq), Member: customer.ID})
		return nil
	}); err != nil {
		return billing.Customer{}, errors.Join(billing.ErrProvider, err)
	}

	c.store.logger.DebugContext(ctx, "customer created", logger.CustomerID(customer.ID))
	return customer, nil
}

// Delete removes the customer record. Subscriptions are kept.
func (c *Customers) Delete(ctx context.Context, id string) error {
	key := c.store.customerKey(id)
	err := c.store.watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return billing.NotFound(billing.KindCustomer, id)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Del(ctx, key)
			p.ZRem(ctx, c.store.customersKey(), id)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return err
	}

	c.store.logger.DebugContext(ctx, "customer deleted", logger.CustomerID(id))
	return nil
}

func (c *Customers) SetupPayments(ctx context.Context, id string) error {
	key := c.store.customerKey(id)
	err := c.store.watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return billing.NotFound(billing.KindCustomer, id)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key, fieldPaymentReady, "1")
			return nil
		})
		return err
	}, key)
	if err != nil {
		return err
	}

	c.store.logger.DebugContext(ctx, "customer payment method attached", logger.CustomerID(id))
	return nil
}

// hashReader is satisfied by clients and transactions.
type hashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

func (s *store) getCustomer(ctx context.Context, cmd hashReader, id string) (billing.Customer, error) {
	fields, err := cmd.HGetAll(ctx, s.customerKey(id)).Result()
	if err != nil {
		return billing.Customer{}, errors.Join(billing.ErrProvider, err)
	}
	if len(fields) == 0 {
		return billing.Customer{}, billing.NotFound(billing.KindCustomer, id)
	}
	return decodeCustomer(id, fields)
}

func decodeCustomer(id string, fields map[string]string) (billing.Customer, error) {
	raw := fields[fieldPaymentReady]
	ready, err := strconv.ParseBool(raw)
	if err != nil {
		return billing.Customer{}, errors.Join(billing.ErrProvider, ErrCorruptRecord,
			fmt.Errorf("payment_ready %q: %w", raw, err))
	}
	return billing.Customer{
		ID:           id,
		Email:        fields[fieldEmail],
		PaymentReady: ready,
	}, nil
}
