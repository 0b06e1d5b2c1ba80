// Package interviews persists video interviews between sponsors and workers.
// An interview is scheduled or cancelled; cancelled is terminal.
package interviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"go.opentelemetry.io/otel"

	"github.com/ethiomaids/platform/internal/messaging"
)

var tracer = otel.Tracer("ethiomaids.internal.interviews")

// ErrNotFound indicates no interview matched the id for the caller's phone
// number.
var ErrNotFound = errors.New("interviews: interview not found")

const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
)

const (
	TypeWhatsAppVideo = "whatsapp_video"
	TypeZoom          = "zoom"
	TypeGoogleMeet    = "google_meet"
	TypePhoneCall     = "phone_call"
)

const DefaultDurationMinutes = 30

// Interview is one video_interviews row.
type Interview struct {
	ID              uuid.UUID
	MaidID          string
	MaidName        string
	MaidPhone       string
	SponsorPhone    string
	SponsorName     string
	ScheduledDate   time.Time
	DurationMinutes int
	InterviewType   string
	MeetingLink     string
	Status          string
	Notes           string
	CreatedVia      string
}

// ScheduleRequest carries a validated interview to insert. Date validation
// (parseable, strictly future) happens before this layer.
type ScheduleRequest struct {
	MaidID          string
	MaidPhone       string
	SponsorPhone    string
	SponsorName     string
	ScheduledDate   time.Time
	DurationMinutes int
	InterviewType   string
	MeetingLink     string
	Notes           string
	CreatedVia      string
}

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists video interviews in Postgres.
type Repository struct {
	pool PgxPool
}

func NewRepository(pool PgxPool) *Repository {
	if pool == nil {
		panic("interviews: pgx pool required")
	}
	return &Repository{pool: pool}
}

// Create inserts a scheduled interview.
func (r *Repository) Create(ctx context.Context, req ScheduleRequest) (*Interview, error) {
	ctx, span := tracer.Start(ctx, "interviews.create")
	defer span.End()

	if req.DurationMinutes <= 0 {
		req.DurationMinutes = DefaultDurationMinutes
	}
	if req.InterviewType == "" {
		req.InterviewType = TypeWhatsAppVideo
	}

	id := uuid.New()
	query := `
		INSERT INTO video_interviews (id, maid_id, sponsor_phone, sponsor_name, maid_phone,
			scheduled_date, duration_minutes, interview_type, meeting_link, status, notes, created_via)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	if err := r.pool.QueryRow(ctx, query, id, req.MaidID, req.SponsorPhone, req.SponsorName, req.MaidPhone,
		req.ScheduledDate, req.DurationMinutes, req.InterviewType, req.MeetingLink,
		StatusScheduled, req.Notes, req.CreatedVia).Scan(&id); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("interviews: insert: %w", err)
	}

	return &Interview{
		ID:              id,
		MaidID:          req.MaidID,
		MaidPhone:       req.MaidPhone,
		SponsorPhone:    req.SponsorPhone,
		SponsorName:     req.SponsorName,
		ScheduledDate:   req.ScheduledDate,
		DurationMinutes: req.DurationMinutes,
		InterviewType:   req.InterviewType,
		MeetingLink:     req.MeetingLink,
		Status:          StatusScheduled,
		Notes:           req.Notes,
		CreatedVia:      req.CreatedVia,
	}, nil
}

// Cancel soft-cancels an interview, stamping cancelled_at. The sponsor phone
// must own the interview.
func (r *Repository) Cancel(ctx context.Context, id, sponsorPhone, reason string) error {
	ctx, span := tracer.Start(ctx, "interviews.cancel")
	defer span.End()

	if reason == "" {
		reason = "Cancelled by sponsor"
	}
	query := `
		UPDATE video_interviews
		SET status = $3, cancelled_at = now(), notes = $4
		WHERE id = $1 AND sponsor_phone = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, sponsorPhone, StatusCancelled, reason)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("interviews: cancel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Upcoming returns scheduled interviews for the sponsor within the look-ahead
// window using the database-side get_upcoming_interviews function, which
// pre-joins worker names.
func (r *Repository) Upcoming(ctx context.Context, sponsorPhone string, daysAhead int) ([]Interview, error) {
	ctx, span := tracer.Start(ctx, "interviews.upcoming")
	defer span.End()

	if daysAhead <= 0 {
		daysAhead = 7
	}
	query := `SELECT interview_id, maid_name, scheduled_date, duration_minutes, interview_type, meeting_link, status
		FROM get_upcoming_interviews($1, $2)`
	rows, err := r.pool.Query(ctx, query, sponsorPhone, daysAhead)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("interviews: upcoming: %w", err)
	}
	defer rows.Close()

	var out []Interview
	for rows.Next() {
		iv := Interview{SponsorPhone: sponsorPhone}
		if err := rows.Scan(&iv.ID, &iv.MaidName, &iv.ScheduledDate, &iv.DurationMinutes,
			&iv.InterviewType, &iv.MeetingLink, &iv.Status); err != nil {
			return nil, fmt.Errorf("interviews: scan upcoming: %w", err)
		}
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("interviews: upcoming rows: %w", err)
	}
	return out, nil
}

// WhatsAppMeetingLink builds the wa.me deep link used for whatsapp_video
// interviews. The worker's own number is preferred; the sponsor's number is
// the fallback when the profile has none.
func WhatsAppMeetingLink(maidPhone, sponsorPhone string) string {
	phone := maidPhone
	if phone == "" {
		phone = sponsorPhone
	}
	digits := messaging.DigitsOnly(phone)
	if digits == "" {
		return ""
	}
	return "https://wa.me/" + digits + "?text=Video%20Interview%20Scheduled"
}
