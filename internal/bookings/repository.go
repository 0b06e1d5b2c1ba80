// Package bookings persists sponsor booking requests created through the
// concierge. Status moves one way: pending rows can be cancelled or
// rescheduled, and cancelled is terminal.
package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("ethiomaids.internal.bookings")

// ErrNotFound indicates no booking matched the id for the caller's phone
// number. Mutations are scoped to the requesting phone so one sponsor cannot
// touch another's bookings.
var ErrNotFound = errors.New("bookings: booking not found")

const (
	StatusPending     = "pending"
	StatusConfirmed   = "confirmed"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
	StatusCompleted   = "completed"
)

const (
	TypeInterview   = "interview"
	TypeHire        = "hire"
	TypeReplacement = "replacement"
	TypeInquiry     = "inquiry"
)

// Booking is one maid_bookings row.
type Booking struct {
	ID          uuid.UUID
	PhoneNumber string
	SponsorName string
	MaidID      string
	MaidName    string
	BookingType string
	BookingDate *time.Time
	Status      string
	Notes       string
	CreatedAt   time.Time
}

// CreateRequest carries the fields book_maid collects. Everything except the
// phone number and booking type is optional; a booking without a maid id is a
// general inquiry.
type CreateRequest struct {
	PhoneNumber string
	SponsorName string
	MaidID      string
	MaidName    string
	BookingType string
	BookingDate *time.Time
	Notes       string
}

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists bookings in Postgres.
type Repository struct {
	pool PgxPool
}

func NewRepository(pool PgxPool) *Repository {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &Repository{pool: pool}
}

// Create inserts a pending booking.
func (r *Repository) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	ctx, span := tracer.Start(ctx, "bookings.create")
	defer span.End()

	id := uuid.New()
	query := `
		INSERT INTO maid_bookings (id, phone_number, sponsor_name, maid_id, maid_name, booking_type, booking_date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query, id, req.PhoneNumber, req.SponsorName, req.MaidID, req.MaidName,
		req.BookingType, req.BookingDate, StatusPending, req.Notes).Scan(&createdAt); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("bookings: insert: %w", err)
	}
	return &Booking{
		ID:          id,
		PhoneNumber: req.PhoneNumber,
		SponsorName: req.SponsorName,
		MaidID:      req.MaidID,
		MaidName:    req.MaidName,
		BookingType: req.BookingType,
		BookingDate: req.BookingDate,
		Status:      StatusPending,
		Notes:       req.Notes,
		CreatedAt:   createdAt,
	}, nil
}

// ListByPhone returns all bookings for the phone number, optionally filtered
// by status. "all" or empty returns every row. No pagination.
func (r *Repository) ListByPhone(ctx context.Context, phoneNumber, status string) ([]Booking, error) {
	ctx, span := tracer.Start(ctx, "bookings.list")
	defer span.End()

	query := `
		SELECT id, phone_number, sponsor_name, maid_id, maid_name, booking_type, booking_date, status, notes, created_at
		FROM maid_bookings
		WHERE phone_number = $1
	`
	args := []any{phoneNumber}
	if status != "" && status != "all" {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("bookings: list: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.PhoneNumber, &b.SponsorName, &b.MaidID, &b.MaidName,
			&b.BookingType, &b.BookingDate, &b.Status, &b.Notes, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("bookings: scan: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: list rows: %w", err)
	}
	return out, nil
}

// Cancel marks a booking cancelled. The phone number must own the booking.
func (r *Repository) Cancel(ctx context.Context, id, phoneNumber, reason string) error {
	ctx, span := tracer.Start(ctx, "bookings.cancel")
	defer span.End()

	if reason == "" {
		reason = "Cancelled by user"
	}
	query := `
		UPDATE maid_bookings
		SET status = $3, notes = $4
		WHERE id = $1 AND phone_number = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, phoneNumber, StatusCancelled, reason)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("bookings: cancel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Reschedule moves a booking to a new date. The phone number must own the
// booking.
func (r *Repository) Reschedule(ctx context.Context, id, phoneNumber string, newDate time.Time) error {
	ctx, span := tracer.Start(ctx, "bookings.reschedule")
	defer span.End()

	query := `
		UPDATE maid_bookings
		SET booking_date = $3, status = $4
		WHERE id = $1 AND phone_number = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, phoneNumber, newDate, StatusRescheduled)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("bookings: reschedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
