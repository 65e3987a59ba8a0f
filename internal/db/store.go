package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propdesk/backend/internal/models"
	"github.com/propdesk/backend/internal/source"
)

const uniqueViolation = "23505"

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const ticketColumns = `id, property_name, unit_address, issue_description, urgency, status, service_provider, created_at, updated_at`

func scanTicket(row pgx.Row) (models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(&t.ID, &t.PropertyName, &t.UnitAddress, &t.IssueDescription, &t.Urgency, &t.Status, &t.ServiceProvider, &t.CreatedAt, &t.UpdatedAt)
	return t, notFound(err)
}

func (s *Store) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTicket(ctx context.Context, id string) (models.Ticket, error) {
	return scanTicket(s.Pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
}

func (s *Store) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, company_name, phone_number, COALESCE(service_categories, '{}'), type, is_active,
			average_rating, total_jobs, average_response_time, on_time_percentage, jobs_per_month
		FROM vendors
		ORDER BY company_name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Vendor
	for rows.Next() {
		var v models.Vendor
		if err := rows.Scan(&v.ID, &v.CompanyName, &v.PhoneNumber, &v.ServiceCategories, &v.Type, &v.IsActive,
			&v.AverageRating, &v.TotalJobs, &v.AverageResponseTime, &v.OnTimePercentage, &v.JobsPerMonth); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListPropertyUnits joins each unit with its property and one active tenant
// link, if any. is_occupied is derived from that link; a unit with several
// active links is still a single row.
func (s *Store) ListPropertyUnits(ctx context.Context) ([]models.PropertyUnit, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT u.id, p.name, u.full_address, u.is_active,
			tu.tenant_id IS NOT NULL, te.name, te.emergency_contact,
			p.manager_name, p.manager_phone, p.manager_email
		FROM units u
		JOIN properties p ON p.id = u.property_id
		LEFT JOIN LATERAL (
			SELECT l.tenant_id FROM tenant_units l
			WHERE l.unit_id = u.id AND l.is_active
			ORDER BY l.tenant_id
			LIMIT 1
		) tu ON true
		LEFT JOIN tenants te ON te.id = tu.tenant_id
		ORDER BY p.name ASC, u.full_address ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PropertyUnit
	for rows.Next() {
		var u models.PropertyUnit
		if err := rows.Scan(&u.ID, &u.PropertyName, &u.FullAddress, &u.IsActive,
			&u.IsOccupied, &u.TenantName, &u.EmergencyContact,
			&u.ManagerName, &u.ManagerPhone, &u.ManagerEmail); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) ListCalls(ctx context.Context) ([]models.Call, error) {
	return s.queryCalls(ctx, "", "")
}

func (s *Store) GetCall(ctx context.Context, id string) (models.Call, error) {
	calls, err := s.queryCalls(ctx, id, "")
	if err != nil {
		return models.Call{}, err
	}
	if len(calls) == 0 {
		return models.Call{}, source.ErrNotFound
	}
	return calls[0], nil
}

// ListCallsForTicket returns the calls linked to a ticket, newest first.
func (s *Store) ListCallsForTicket(ctx context.Context, ticketID string) ([]models.Call, error) {
	return s.queryCalls(ctx, "", ticketID)
}

func (s *Store) queryCalls(ctx context.Context, id, ticketID string) ([]models.Call, error) {
	query := `SELECT id, phone_number, contact_name, call_duration, COALESCE(transcript, ''),
		direction, status, ticket_id, recording_key, created_at
		FROM communications`
	args := []any{}
	wheres := []string{"type = 'call'"}
	if id != "" {
		args = append(args, id)
		wheres = append(wheres, fmt.Sprintf("id = $%d", len(args)))
	}
	if ticketID != "" {
		args = append(args, ticketID)
		wheres = append(wheres, fmt.Sprintf("ticket_id = $%d", len(args)))
	}
	query += " WHERE " + strings.Join(wheres, " AND ")
	query += " ORDER BY created_at DESC, id ASC"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Call
	for rows.Next() {
		var c models.Call
		if err := rows.Scan(&c.ID, &c.PhoneNumber, &c.ContactName, &c.CallDuration, &c.Transcript,
			&c.Direction, &c.Status, &c.TicketID, &c.RecordingKey, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateTicket(ctx context.Context, t models.Ticket) (models.Ticket, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO tickets (`+ticketColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING `+ticketColumns,
		t.ID, t.PropertyName, t.UnitAddress, t.IssueDescription, t.Urgency, t.Status, t.ServiceProvider, t.CreatedAt, t.UpdatedAt)
	created, err := scanTicket(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return models.Ticket{}, fmt.Errorf("ticket %s: %w", t.ID, source.ErrConflict)
	}
	return created, err
}

// UpdateTicketStatus changes the status and, when a ticket first becomes
// resolved, credits its service provider with a completed job.
func (s *Store) UpdateTicketStatus(ctx context.Context, id string, status models.TicketStatus) (models.Ticket, error) {
	var out models.Ticket
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		var prev models.TicketStatus
		if err := tx.QueryRow(ctx, `SELECT status FROM tickets WHERE id = $1 FOR UPDATE`, id).Scan(&prev); err != nil {
			return notFound(err)
		}

		t, err := scanTicket(tx.QueryRow(ctx, `
			UPDATE tickets SET status = $1, updated_at = GREATEST(NOW(), created_at)
			WHERE id = $2
			RETURNING `+ticketColumns, status, id))
		if err != nil {
			return err
		}

		if status == models.TicketResolved && prev != models.TicketResolved && t.ServiceProvider != nil {
			if _, err := tx.Exec(ctx, `UPDATE vendors SET total_jobs = total_jobs + 1 WHERE company_name = $1`, *t.ServiceProvider); err != nil {
				return err
			}
		}
		out = t
		return nil
	})
	return out, err
}

func (s *Store) SetVendorActive(ctx context.Context, id string, active bool) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE vendors SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return source.ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return source.ErrNotFound
	}
	return err
}
