// Package platform reads the single platform_settings row that parameterizes
// the assistant: identity, support contacts, working hours and model tuning.
package platform

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Settings is the platform configuration consumed on every webhook
// invocation. It is fetched fresh per request; there is deliberately no
// process-wide cache.
type Settings struct {
	PlatformName      string
	SupportEmail      string
	SupportPhone      string
	WorkingHours      string
	AvailableServices []string
	AIModel           string
	AITemperature     float64
}

// Defaults fills any zero field in settings, covering both a missing row and
// partially filled rows.
type Defaults struct {
	PlatformName  string
	SupportEmail  string
	SupportPhone  string
	WorkingHours  string
	Services      []string
	AIModel       string
	AITemperature float64
}

type Row interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store loads platform settings from Postgres.
type Store struct {
	pool     Row
	defaults Defaults
}

func NewStore(pool Row, defaults Defaults) *Store {
	if pool == nil {
		panic("platform: pgx pool required")
	}
	if defaults.WorkingHours == "" {
		defaults.WorkingHours = "9:00 AM - 6:00 PM EAT, Monday - Saturday"
	}
	if len(defaults.Services) == 0 {
		defaults.Services = []string{"Maid Placement", "Training", "Document Processing"}
	}
	return &Store{pool: pool, defaults: defaults}
}

// Get reads the settings row. A missing row is not an error: the configured
// defaults are returned so the assistant can keep answering.
func (s *Store) Get(ctx context.Context) (Settings, error) {
	query := `
		SELECT platform_name, support_email, support_phone, working_hours,
			available_services, ai_model, ai_temperature
		FROM platform_settings
		LIMIT 1
	`
	var out Settings
	err := s.pool.QueryRow(ctx, query).Scan(
		&out.PlatformName,
		&out.SupportEmail,
		&out.SupportPhone,
		&out.WorkingHours,
		&out.AvailableServices,
		&out.AIModel,
		&out.AITemperature,
	)
	if err == pgx.ErrNoRows {
		return s.applyDefaults(Settings{}), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("platform: load settings: %w", err)
	}
	return s.applyDefaults(out), nil
}

func (s *Store) applyDefaults(in Settings) Settings {
	if in.PlatformName == "" {
		in.PlatformName = s.defaults.PlatformName
	}
	if in.SupportEmail == "" {
		in.SupportEmail = s.defaults.SupportEmail
	}
	if in.SupportPhone == "" {
		in.SupportPhone = s.defaults.SupportPhone
	}
	if in.WorkingHours == "" {
		in.WorkingHours = s.defaults.WorkingHours
	}
	if len(in.AvailableServices) == 0 {
		in.AvailableServices = s.defaults.Services
	}
	if in.AIModel == "" {
		in.AIModel = s.defaults.AIModel
	}
	if in.AITemperature == 0 {
		in.AITemperature = s.defaults.AITemperature
	}
	return in
}
