package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func newID() uuid.UUID { return uuid.New() }

func TestCreateInsertsPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO maid_bookings").
		WithArgs(pgxmock.AnyArg(), "+15551234567", "Ahmed", "m-1", "Fatima", TypeInterview, (*time.Time)(nil), StatusPending, "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	repo := NewRepository(mock)
	booking, err := repo.Create(context.Background(), CreateRequest{
		PhoneNumber: "+15551234567",
		SponsorName: "Ahmed",
		MaidID:      "m-1",
		MaidName:    "Fatima",
		BookingType: TypeInterview,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if booking.Status != StatusPending {
		t.Errorf("expected pending, got %s", booking.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListByPhoneStatusFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	cols := []string{"id", "phone_number", "sponsor_name", "maid_id", "maid_name", "booking_type", "booking_date", "status", "notes", "created_at"}
	mock.ExpectQuery(`AND status = \$2`).
		WithArgs("+15551234567", StatusPending).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(newID(), "+15551234567", "Ahmed", "m-1", "Fatima", TypeInterview, (*time.Time)(nil), StatusPending, "", time.Now()))

	repo := NewRepository(mock)
	list, err := repo.ListByPhone(context.Background(), "+15551234567", StatusPending)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Status != StatusPending {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestCancelScopedToOwner(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	id := newID().String()
	mock.ExpectExec("UPDATE maid_bookings").
		WithArgs(id, "+15559999999", StatusCancelled, "changed plans").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewRepository(mock)
	err = repo.Cancel(context.Background(), id, "+15559999999", "changed plans")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner, got %v", err)
	}
}

func TestRescheduleUpdatesDateAndStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	id := newID().String()
	newDate := time.Now().Add(48 * time.Hour)
	mock.ExpectExec("UPDATE maid_bookings").
		WithArgs(id, "+15551234567", newDate, StatusRescheduled).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewRepository(mock)
	if err := repo.Reschedule(context.Background(), id, "+15551234567", newDate); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
}
