// Package cache keeps full record lists in Redis in front of a slower source.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/propdesk/backend/internal/metrics"
	"github.com/propdesk/backend/internal/models"
	"github.com/propdesk/backend/internal/source"
)

const (
	KeyTickets = "propdesk:tickets"
	KeyVendors = "propdesk:vendors"
	KeyUnits   = "propdesk:units"
	KeyCalls   = "propdesk:calls"
)

// Source is a read-through cache over another source. Single-record lookups
// go straight to the inner source. Writes are forwarded when the inner source
// accepts them and drop the affected lists.
type Source struct {
	Inner  source.Source
	Client *redis.Client
	TTL    time.Duration
	Logger zerolog.Logger
}

func New(inner source.Source, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Source {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Source{Inner: inner, Client: client, TTL: ttl, Logger: logger}
}

// NewRedis builds a client with the pool settings used across services.
func NewRedis(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

func (s *Source) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	return readThrough(ctx, s, KeyTickets, s.Inner.ListTickets)
}

func (s *Source) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	return readThrough(ctx, s, KeyVendors, s.Inner.ListVendors)
}

func (s *Source) ListPropertyUnits(ctx context.Context) ([]models.PropertyUnit, error) {
	return readThrough(ctx, s, KeyUnits, s.Inner.ListPropertyUnits)
}

func (s *Source) ListCalls(ctx context.Context) ([]models.Call, error) {
	return readThrough(ctx, s, KeyCalls, s.Inner.ListCalls)
}

func (s *Source) GetTicket(ctx context.Context, id string) (models.Ticket, error) {
	return s.Inner.GetTicket(ctx, id)
}

func (s *Source) GetCall(ctx context.Context, id string) (models.Call, error) {
	return s.Inner.GetCall(ctx, id)
}

func (s *Source) CreateTicket(ctx context.Context, t models.Ticket) (models.Ticket, error) {
	w, ok := s.Inner.(source.Writer)
	if !ok {
		return models.Ticket{}, source.ErrReadOnly
	}
	out, err := w.CreateTicket(ctx, t)
	if err == nil {
		s.Invalidate(ctx, KeyTickets)
	}
	return out, err
}

func (s *Source) UpdateTicketStatus(ctx context.Context, id string, status models.TicketStatus) (models.Ticket, error) {
	w, ok := s.Inner.(source.Writer)
	if !ok {
		return models.Ticket{}, source.ErrReadOnly
	}
	out, err := w.UpdateTicketStatus(ctx, id, status)
	if err == nil {
		// resolving a ticket can change vendor job counts
		s.Invalidate(ctx, KeyTickets, KeyVendors)
	}
	return out, err
}

func (s *Source) SetVendorActive(ctx context.Context, id string, active bool) error {
	w, ok := s.Inner.(source.Writer)
	if !ok {
		return source.ErrReadOnly
	}
	err := w.SetVendorActive(ctx, id, active)
	if err == nil {
		s.Invalidate(ctx, KeyVendors)
	}
	return err
}

// Ping checks the inner source and, if configured, Redis.
func (s *Source) Ping(ctx context.Context) error {
	if p, ok := s.Inner.(source.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return err
		}
	}
	if s.Client == nil {
		return nil
	}
	return s.Client.Ping(ctx).Err()
}

// Invalidate drops cached lists. Failures are logged; the entries expire
// with the TTL anyway.
func (s *Source) Invalidate(ctx context.Context, keys ...string) {
	if s.Client == nil || len(keys) == 0 {
		return
	}
	if err := s.Client.Del(ctx, keys...).Err(); err != nil {
		s.Logger.Warn().Err(err).Strs("keys", keys).Msg("cache invalidate failed")
	}
}

func readThrough[T any](ctx context.Context, s *Source, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if s.Client == nil {
		return load(ctx)
	}

	raw, err := s.Client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []T
		if jsonErr := json.Unmarshal(raw, &out); jsonErr == nil {
			metrics.CacheHits.WithLabelValues(key).Inc()
			return out, nil
		}
		s.Logger.Warn().Str("key", key).Msg("cache entry undecodable, reloading")
	case !errors.Is(err, redis.Nil):
		s.Logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	metrics.CacheMisses.WithLabelValues(key).Inc()

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return out, nil
	}
	if err := s.Client.Set(ctx, key, b, s.TTL).Err(); err != nil {
		s.Logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return out, nil
}
