package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"customer-service/internal/api/handler/dto"
	"customer-service/internal/domain/customer"

	"golang.org/x/sync/singleflight"
)

const (
	keyCustomerList = "customers/list"
	keyDetailPrefix = "customers/detail/"

	defaultStaleAfter = 30 * time.Second
)

func detailKey(accountID string) string {
	return keyDetailPrefix + accountID
}

type cacheEntry struct {
	value     any
	fetchedAt time.Time
}

// Querier is the session-scoped read-through cache over the API client.
// Reads within the staleness window come from the cache; concurrent
// observers of one key share a single in-flight fetch; failed reads get
// one retry. Writes never touch cached state directly: on success they
// invalidate the affected keys so the next read re-fetches server truth.
type Querier struct {
	api        *Client
	staleAfter time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
	logger  *slog.Logger
}

func NewQuerier(api *Client, logger *slog.Logger) *Querier {
	if api == nil {
		panic("api client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Querier{
		api:        api,
		staleAfter: defaultStaleAfter,
		entries:    make(map[string]cacheEntry),
		logger:     logger.With("component", "Querier"),
	}
}

// SetStaleAfter adjusts the staleness window. Zero makes every read hit
// the server.
func (q *Querier) SetStaleAfter(d time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.staleAfter = d
}

func (q *Querier) lookup(key string) (any, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	entry, ok := q.entries[key]
	if !ok || time.Since(entry.fetchedAt) >= q.staleAfter {
		return nil, false
	}
	return entry.value, true
}

func (q *Querier) store(key string, value any) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries[key] = cacheEntry{value: value, fetchedAt: time.Now()}
}

// Invalidate drops the given keys so the next observation re-fetches.
func (q *Querier) Invalidate(keys ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, key := range keys {
		delete(q.entries, key)
	}
	q.logger.Debug("Invalidated cache keys", "keys", keys)
}

// fetch is the shared read path: fresh cache hit, otherwise a
// singleflight fetch with one retry on failure.
func (q *Querier) fetch(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	if value, ok := q.lookup(key); ok {
		q.logger.Debug("Cache hit", "key", key)
		return value, nil
	}

	value, err, shared := q.group.Do(key, func() (any, error) {
		// A concurrent flight may have refreshed the key already.
		if value, ok := q.lookup(key); ok {
			return value, nil
		}

		value, err := fn(ctx)
		if err != nil {
			q.logger.Warn("Read failed, retrying once", "key", key, "error", err)
			value, err = fn(ctx)
		}
		if err != nil {
			return nil, err
		}

		q.store(key, value)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		q.logger.Debug("Shared in-flight fetch", "key", key)
	}
	return value, nil
}

func (q *Querier) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	value, err := q.fetch(ctx, keyCustomerList, func(ctx context.Context) (any, error) {
		return q.api.ListCustomers(ctx)
	})
	if err != nil {
		return nil, err
	}
	return value.([]*customer.Customer), nil
}

func (q *Querier) GetCustomer(ctx context.Context, accountID string) (*customer.Customer, error) {
	value, err := q.fetch(ctx, detailKey(accountID), func(ctx context.Context) (any, error) {
		return q.api.GetCustomer(ctx, accountID)
	})
	if err != nil {
		return nil, err
	}
	return value.(*customer.Customer), nil
}

func (q *Querier) CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*customer.Customer, error) {
	created, err := q.api.CreateCustomer(ctx, req)
	if err != nil {
		return nil, err
	}
	q.Invalidate(keyCustomerList)
	return created, nil
}

func (q *Querier) UpdateCustomer(ctx context.Context, accountID string, req dto.UpdateCustomerRequest) (*customer.Customer, error) {
	updated, err := q.api.UpdateCustomer(ctx, accountID, req)
	if err != nil {
		return nil, err
	}
	q.Invalidate(keyCustomerList, detailKey(accountID))
	return updated, nil
}

func (q *Querier) DeleteCustomer(ctx context.Context, accountID string) error {
	if err := q.api.DeleteCustomer(ctx, accountID); err != nil {
		return err
	}
	q.Invalidate(keyCustomerList)
	return nil
}
