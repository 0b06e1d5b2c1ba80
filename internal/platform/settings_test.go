package platform

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func testDefaults() Defaults {
	return Defaults{
		PlatformName:  "Ethiopian Maids",
		SupportEmail:  "support@ethiopianmaids.com",
		SupportPhone:  "+971501234567",
		AIModel:       "anthropic.claude-3-5-sonnet-20241022-v2:0",
		AITemperature: 0.7,
	}
}

func TestGetAppliesDefaultsOnMissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT platform_name").
		WillReturnError(pgx.ErrNoRows)

	store := NewStore(mock, testDefaults())
	settings, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if settings.PlatformName != "Ethiopian Maids" {
		t.Errorf("expected default platform name, got %s", settings.PlatformName)
	}
	if settings.AITemperature != 0.7 {
		t.Errorf("expected default temperature, got %f", settings.AITemperature)
	}
	if len(settings.AvailableServices) == 0 {
		t.Error("expected default services")
	}
}

func TestGetFillsPartialRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT platform_name").
		WillReturnRows(pgxmock.NewRows([]string{
			"platform_name", "support_email", "support_phone", "working_hours",
			"available_services", "ai_model", "ai_temperature",
		}).AddRow("Gulf Helpers", "", "+97450000000", "", []string{"Placement"}, "", 0.3))

	store := NewStore(mock, testDefaults())
	settings, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if settings.PlatformName != "Gulf Helpers" {
		t.Errorf("row value should win, got %s", settings.PlatformName)
	}
	if settings.SupportEmail != "support@ethiopianmaids.com" {
		t.Errorf("empty column should default, got %s", settings.SupportEmail)
	}
	if settings.AITemperature != 0.3 {
		t.Errorf("expected row temperature, got %f", settings.AITemperature)
	}
	if settings.AIModel == "" {
		t.Error("expected default model")
	}
}
