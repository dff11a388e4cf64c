// Package store is the record store behind the booking engine. GormStore is
// the production implementation; MemoryStore is a drop-in fake for tests and
// local runs.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/dzoniops/booking-service/models"
)

var (
	ErrNotFound = errors.New("store: record not found")
	// ErrConflict is returned when an insert would occupy a night that an
	// active booking already holds.
	ErrConflict = errors.New("store: booking conflicts with an existing booking")
	// ErrStatusMismatch means a conditional status update found the booking in
	// another state. The current record is returned alongside it.
	ErrStatusMismatch = errors.New("store: booking status changed concurrently")
	// ErrUnavailable wraps every infrastructure failure, timeouts included.
	ErrUnavailable = errors.New("store: unavailable")
)

// BookingQuery filters bookings. Zero fields do not filter. From/To select
// bookings whose [check_in, check_out) overlaps [From, To).
type BookingQuery struct {
	PropertyID string
	GuestEmail string
	Statuses   []models.BookingStatus
	From       time.Time
	To         time.Time
}

// UpsertOutcome reports the result of writing one calendar key.
type UpsertOutcome struct {
	PropertyID string
	Date       time.Time
	Err        error
}

type Store interface {
	GetProperty(ctx context.Context, id string) (*models.Property, error)
	SaveProperty(ctx context.Context, p *models.Property) error
	ListProperties(ctx context.Context, activeOnly bool) ([]models.Property, error)

	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	QueryBookings(ctx context.Context, q BookingQuery) ([]models.Booking, error)
	// InsertBooking stores b and reserves its nights atomically. It returns
	// ErrConflict when any night is already held by an active booking.
	InsertBooking(ctx context.Context, b *models.Booking) error
	// UpdateBookingStatus moves a booking from one status to another. Moving to
	// cancelled releases the booking's nights in the same transaction.
	UpdateBookingStatus(
		ctx context.Context,
		id string,
		from, to models.BookingStatus,
	) (*models.Booking, error)

	// QueryCalendarDays returns rows with start <= date <= end ordered by date.
	QueryCalendarDays(ctx context.Context, propertyID string, start, end time.Time) ([]models.CalendarDay, error)
	// UpsertCalendarDays replaces rows by (property_id, date). Keys that could
	// not be written carry a non-nil Err; the rest were committed.
	UpsertCalendarDays(ctx context.Context, days []models.CalendarDay) ([]UpsertOutcome, error)
}

// IsTransient reports whether err stems from the store rather than the request.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
