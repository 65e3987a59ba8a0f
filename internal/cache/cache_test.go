package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propdesk/backend/internal/models"
	"github.com/propdesk/backend/internal/source"
)

type countingSource struct {
	*source.DemoSource
	tickets int
	vendors int
}

func (c *countingSource) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	c.tickets++
	return c.DemoSource.ListTickets(ctx)
}

func (c *countingSource) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	c.vendors++
	return c.DemoSource.ListVendors(ctx)
}

// readOnly hides the demo source's write methods.
type readOnly struct {
	source.Source
}

func setup(t *testing.T) (*miniredis.Miniredis, *countingSource, *Source) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := &countingSource{DemoSource: source.NewDemoSource(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))}
	return mr, inner, New(inner, client, time.Minute, zerolog.Nop())
}

func ticketIDs(ts []models.Ticket) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func TestReadThroughServesSecondReadFromRedis(t *testing.T) {
	mr, inner, s := setup(t)
	ctx := context.Background()

	first, err := s.ListTickets(ctx)
	require.NoError(t, err)
	second, err := s.ListTickets(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.tickets)
	assert.Equal(t, ticketIDs(first), ticketIDs(second))
	assert.True(t, mr.Exists(KeyTickets))
	assert.Equal(t, time.Minute, mr.TTL(KeyTickets))
}

func TestEntryExpiresWithTTL(t *testing.T) {
	mr, inner, s := setup(t)
	ctx := context.Background()

	_, _ = s.ListTickets(ctx)
	mr.FastForward(2 * time.Minute)
	_, _ = s.ListTickets(ctx)
	assert.Equal(t, 2, inner.tickets)
}

func TestWritesInvalidateAffectedLists(t *testing.T) {
	mr, inner, s := setup(t)
	ctx := context.Background()

	_, _ = s.ListTickets(ctx)
	_, _ = s.ListVendors(ctx)
	require.True(t, mr.Exists(KeyTickets))
	require.True(t, mr.Exists(KeyVendors))

	require.NoError(t, s.SetVendorActive(ctx, "VND-001", false))
	assert.True(t, mr.Exists(KeyTickets))
	assert.False(t, mr.Exists(KeyVendors))

	vendors, err := s.ListVendors(ctx)
	require.NoError(t, err)
	assert.False(t, vendors[0].IsActive)
	assert.Equal(t, 2, inner.vendors)

	_, err = s.UpdateTicketStatus(ctx, "TCK-0001", models.TicketResolved)
	require.NoError(t, err)
	assert.False(t, mr.Exists(KeyTickets))
}

func TestCorruptEntryIsReloaded(t *testing.T) {
	mr, inner, s := setup(t)
	require.NoError(t, mr.Set(KeyTickets, "not json"))

	got, err := s.ListTickets(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 24)
	assert.Equal(t, 1, inner.tickets)
}

func TestNilClientPassesThrough(t *testing.T) {
	inner := &countingSource{DemoSource: source.NewDemoSource(time.Now())}
	s := New(inner, nil, 0, zerolog.Nop())
	ctx := context.Background()

	_, _ = s.ListTickets(ctx)
	_, _ = s.ListTickets(ctx)
	assert.Equal(t, 2, inner.tickets)
	assert.NoError(t, s.Ping(ctx))
}

func TestReadOnlyInnerRejectsWrites(t *testing.T) {
	s := New(readOnly{source.NewDemoSource(time.Now())}, nil, time.Minute, zerolog.Nop())
	ctx := context.Background()

	_, err := s.CreateTicket(ctx, models.Ticket{})
	assert.ErrorIs(t, err, source.ErrReadOnly)
	assert.ErrorIs(t, s.SetVendorActive(ctx, "VND-001", true), source.ErrReadOnly)
}
