// Package source defines the persistence collaborator the dashboard reads
// from, plus the demo and REST gateway implementations.
package source

import (
	"context"
	"errors"

	"github.com/propdesk/backend/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrReadOnly = errors.New("source is read-only")
	ErrConflict = errors.New("record already exists")
)

// Source delivers fully materialized record lists.
type Source interface {
	ListTickets(ctx context.Context) ([]models.Ticket, error)
	ListVendors(ctx context.Context) ([]models.Vendor, error)
	ListPropertyUnits(ctx context.Context) ([]models.PropertyUnit, error)
	ListCalls(ctx context.Context) ([]models.Call, error)
	GetTicket(ctx context.Context, id string) (models.Ticket, error)
	GetCall(ctx context.Context, id string) (models.Call, error)
}

// Writer is implemented by sources that accept back-office edits.
type Writer interface {
	CreateTicket(ctx context.Context, t models.Ticket) (models.Ticket, error)
	UpdateTicketStatus(ctx context.Context, id string, status models.TicketStatus) (models.Ticket, error)
	SetVendorActive(ctx context.Context, id string, active bool) error
}

// Pinger is implemented by sources and stores with a health check.
type Pinger interface {
	Ping(ctx context.Context) error
}
