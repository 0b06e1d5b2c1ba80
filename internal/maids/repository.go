// Package maids provides read-only access to worker profiles. Profile CRUD is
// owned by the wider platform; the concierge only searches.
package maids

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("ethiomaids.internal.maids")

// AvailabilityAvailable is the only status eligible for search results.
const AvailabilityAvailable = "available"

const searchLimit = 10

// Profile is a worker profile row. Age is derived from DateOfBirth at query
// time, never stored.
type Profile struct {
	ID              string
	FullName        string
	DateOfBirth     *time.Time
	ExperienceYears int
	Skills          []string
	Availability    string
	Location        string
	Nationality     string
	Languages       []string
}

// Contact is the subset of a profile needed to schedule an interview.
type Contact struct {
	ID          string
	FullName    string
	PhoneNumber string
}

// Filter narrows an availability search. Zero fields are skipped.
type Filter struct {
	Name          string
	Skills        []string
	MinExperience int
	Location      string
}

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository queries maid_profiles.
type Repository struct {
	pool PgxPool
}

func NewRepository(pool PgxPool) *Repository {
	if pool == nil {
		panic("maids: pgx pool required")
	}
	return &Repository{pool: pool}
}

// SearchAvailable returns available workers matching the filter, at most ten.
// Only rows with availability_status = 'available' are ever returned.
func (r *Repository) SearchAvailable(ctx context.Context, filter Filter) ([]Profile, error) {
	ctx, span := tracer.Start(ctx, "maids.search_available")
	defer span.End()

	var b strings.Builder
	b.WriteString(`
		SELECT id, full_name, date_of_birth, experience_years, skills,
			availability_status, current_location, nationality, languages
		FROM maid_profiles
		WHERE availability_status = $1
	`)
	args := []any{AvailabilityAvailable}

	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		fmt.Fprintf(&b, " AND full_name ILIKE $%d", len(args))
	}
	if len(filter.Skills) > 0 {
		args = append(args, filter.Skills)
		fmt.Fprintf(&b, " AND skills && $%d", len(args))
	}
	if filter.MinExperience > 0 {
		args = append(args, filter.MinExperience)
		fmt.Fprintf(&b, " AND experience_years >= $%d", len(args))
	}
	if filter.Location != "" {
		args = append(args, "%"+strings.ToLower(filter.Location)+"%")
		fmt.Fprintf(&b, " AND current_location ILIKE $%d", len(args))
	}
	fmt.Fprintf(&b, " LIMIT %d", searchLimit)

	rows, err := r.pool.Query(ctx, b.String(), args...)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("maids: search: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.FullName, &p.DateOfBirth, &p.ExperienceYears, &p.Skills,
			&p.Availability, &p.Location, &p.Nationality, &p.Languages); err != nil {
			return nil, fmt.Errorf("maids: scan profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("maids: search rows: %w", err)
	}
	return out, nil
}

// FindByID resolves a worker contact by primary key.
func (r *Repository) FindByID(ctx context.Context, id string) (*Contact, error) {
	query := `
		SELECT id, full_name, phone_number
		FROM maid_profiles
		WHERE id = $1
	`
	return r.scanContact(r.pool.QueryRow(ctx, query, id))
}

// FindAvailableByName resolves a worker contact by case-insensitive name
// substring, restricted to available workers. When several match, the first
// row wins; callers must treat this as a best-effort match.
func (r *Repository) FindAvailableByName(ctx context.Context, name string) (*Contact, error) {
	query := `
		SELECT id, full_name, phone_number
		FROM maid_profiles
		WHERE full_name ILIKE $1 AND availability_status = $2
		LIMIT 1
	`
	return r.scanContact(r.pool.QueryRow(ctx, query, "%"+name+"%", AvailabilityAvailable))
}

func (r *Repository) scanContact(row pgx.Row) (*Contact, error) {
	var c Contact
	if err := row.Scan(&c.ID, &c.FullName, &c.PhoneNumber); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("maids: lookup contact: %w", err)
	}
	return &c, nil
}

// Age returns whole years between the date of birth and now, or 0 when the
// date of birth is unknown.
func (p Profile) Age(now time.Time) int {
	if p.DateOfBirth == nil {
		return 0
	}
	years := now.Year() - p.DateOfBirth.Year()
	if years < 0 {
		return 0
	}
	return years
}
