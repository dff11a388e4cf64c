package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dzoniops/booking-service/db"
	"github.com/dzoniops/booking-service/models"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func price(v int64) *int64 { return &v }

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	gdb, err := db.Open(db.Options{
		Driver: db.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "booking.db"),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return NewGormStore(gdb, 5*time.Second)
}

func newMemStore(t *testing.T) Store {
	return NewMemoryStore()
}

var stores = map[string]func(t *testing.T) Store{
	"gorm-sqlite": newSQLiteStore,
	"memory":      newMemStore,
}

func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			fn(t, newStore(t))
		})
	}
}

func booking(propertyID, in, out string) *models.Booking {
	return &models.Booking{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		GuestName:  "Ada",
		GuestEmail: "ada@example.com",
		CheckIn:    date(in),
		CheckOut:   date(out),
		Guests:     2,
		Status:     models.PENDING,
	}
}

func TestProperties(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		active := &models.Property{ID: "p1", Title: "Cabin", Location: "Åre", PricePerNight: 1000, MaxGuests: 4, IsActive: true,
			Amenities: []string{"wifi", "sauna"}}
		hidden := &models.Property{ID: "p2", Title: "Loft", Location: "Visby", PricePerNight: 800, MaxGuests: 2}
		require.NoError(t, s.SaveProperty(ctx, active))
		require.NoError(t, s.SaveProperty(ctx, hidden))

		got, err := s.GetProperty(ctx, "p1")
		require.NoError(t, err)
		require.Equal(t, "Cabin", got.Title)
		require.Equal(t, []string{"wifi", "sauna"}, []string(got.Amenities))

		all, err := s.ListProperties(ctx, false)
		require.NoError(t, err)
		require.Len(t, all, 2)
		visible, err := s.ListProperties(ctx, true)
		require.NoError(t, err)
		require.Len(t, visible, 1)
		require.Equal(t, "p1", visible[0].ID)

		_, err = s.GetProperty(ctx, "missing")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCalendarUpsertRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		outcomes, err := s.UpsertCalendarDays(ctx, []models.CalendarDay{
			{PropertyID: "p1", Date: date("2024-07-10"), IsAvailable: true, PriceOverride: price(1500)},
			{PropertyID: "p1", Date: date("2024-07-11"), IsAvailable: false},
			{PropertyID: "p2", Date: date("2024-07-10"), IsAvailable: false},
		})
		require.NoError(t, err)
		require.Len(t, outcomes, 3)
		for _, o := range outcomes {
			require.NoError(t, o.Err)
		}

		days, err := s.QueryCalendarDays(ctx, "p1", date("2024-07-10"), date("2024-07-11"))
		require.NoError(t, err)
		require.Len(t, days, 2)
		require.True(t, days[0].Date.Equal(date("2024-07-10")))
		require.NotNil(t, days[0].PriceOverride)
		require.Equal(t, int64(1500), *days[0].PriceOverride)
		require.False(t, days[1].IsAvailable)

		// A write replaces the whole row, clearing the override.
		_, err = s.UpsertCalendarDays(ctx, []models.CalendarDay{
			{PropertyID: "p1", Date: date("2024-07-10"), IsAvailable: true},
		})
		require.NoError(t, err)
		days, err = s.QueryCalendarDays(ctx, "p1", date("2024-07-10"), date("2024-07-10"))
		require.NoError(t, err)
		require.Len(t, days, 1)
		require.Nil(t, days[0].PriceOverride)
		require.Equal(t, int64(1000), models.PriceFor(&days[0], 1000))
	})
}

func TestQueryCalendarDaysInclusiveRange(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		var rows []models.CalendarDay
		for _, d := range []string{"2024-07-09", "2024-07-10", "2024-07-12", "2024-07-13"} {
			rows = append(rows, models.CalendarDay{PropertyID: "p1", Date: date(d)})
		}
		_, err := s.UpsertCalendarDays(ctx, rows)
		require.NoError(t, err)

		days, err := s.QueryCalendarDays(ctx, "p1", date("2024-07-10"), date("2024-07-12"))
		require.NoError(t, err)
		require.Len(t, days, 2)
		require.True(t, days[0].Date.Equal(date("2024-07-10")))
		require.True(t, days[1].Date.Equal(date("2024-07-12")))
	})
}

func TestInsertBookingRejectsOverlap(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.InsertBooking(ctx, booking("p1", "2024-07-10", "2024-07-13")))

		err := s.InsertBooking(ctx, booking("p1", "2024-07-12", "2024-07-14"))
		require.ErrorIs(t, err, ErrConflict)

		// back-to-back and other properties are fine
		require.NoError(t, s.InsertBooking(ctx, booking("p1", "2024-07-13", "2024-07-15")))
		require.NoError(t, s.InsertBooking(ctx, booking("p1", "2024-07-08", "2024-07-10")))
		require.NoError(t, s.InsertBooking(ctx, booking("p2", "2024-07-10", "2024-07-13")))

		all, err := s.QueryBookings(ctx, BookingQuery{PropertyID: "p1"})
		require.NoError(t, err)
		require.Len(t, all, 3)
	})
}

func TestCancelReleasesNights(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		first := booking("p1", "2024-07-10", "2024-07-13")
		require.NoError(t, s.InsertBooking(ctx, first))

		updated, err := s.UpdateBookingStatus(ctx, first.ID, models.PENDING, models.CANCELLED)
		require.NoError(t, err)
		require.Equal(t, models.CANCELLED, updated.Status)

		require.NoError(t, s.InsertBooking(ctx, booking("p1", "2024-07-11", "2024-07-12")))
	})
}

func TestConfirmKeepsNights(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		first := booking("p1", "2024-07-10", "2024-07-13")
		require.NoError(t, s.InsertBooking(ctx, first))

		_, err := s.UpdateBookingStatus(ctx, first.ID, models.PENDING, models.CONFIRMED)
		require.NoError(t, err)
		require.ErrorIs(t, s.InsertBooking(ctx, booking("p1", "2024-07-11", "2024-07-12")), ErrConflict)
	})
}

func TestUpdateBookingStatusMismatch(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		b := booking("p1", "2024-07-10", "2024-07-13")
		require.NoError(t, s.InsertBooking(ctx, b))
		_, err := s.UpdateBookingStatus(ctx, b.ID, models.PENDING, models.CONFIRMED)
		require.NoError(t, err)

		current, err := s.UpdateBookingStatus(ctx, b.ID, models.PENDING, models.CANCELLED)
		require.ErrorIs(t, err, ErrStatusMismatch)
		require.Equal(t, models.CONFIRMED, current.Status)

		_, err = s.UpdateBookingStatus(ctx, "missing", models.PENDING, models.CONFIRMED)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestQueryBookingsFilters(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		a := booking("p1", "2024-07-10", "2024-07-12")
		b := booking("p1", "2024-07-15", "2024-07-18")
		b.GuestEmail = "grace@example.com"
		c := booking("p1", "2024-07-20", "2024-07-21")
		for _, x := range []*models.Booking{a, b, c} {
			require.NoError(t, s.InsertBooking(ctx, x))
		}
		_, err := s.UpdateBookingStatus(ctx, c.ID, models.PENDING, models.CANCELLED)
		require.NoError(t, err)

		got, err := s.QueryBookings(ctx, BookingQuery{
			PropertyID: "p1",
			Statuses:   models.ActiveStatuses,
			From:       date("2024-07-12"),
			To:         date("2024-07-21"),
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, b.ID, got[0].ID)

		got, err = s.QueryBookings(ctx, BookingQuery{GuestEmail: "ada@example.com"})
		require.NoError(t, err)
		require.Len(t, got, 2)
	})
}

func TestConcurrentInsertsSingleWinner(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		const n = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
			conflicts int
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.InsertBooking(ctx, booking("p1", "2024-07-10", "2024-07-13"))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					succeeded++
				case errors.Is(err, ErrConflict):
					conflicts++
				}
			}()
		}
		wg.Wait()
		require.Equal(t, 1, succeeded)
		require.Equal(t, n-1, conflicts)
	})
}

func TestCancelledContextIsTransient(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.QueryCalendarDays(ctx, "p1", date("2024-07-10"), date("2024-07-12"))
		require.ErrorIs(t, err, ErrUnavailable)
		require.True(t, IsTransient(err))
	})
}

func TestGormStoreDriverErrorIsTransient(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "listing_availability"`).
		WillReturnError(errors.New("dial tcp 10.0.0.5:5432: connect: connection refused"))

	_, err = NewGormStore(gdb, time.Second).QueryCalendarDays(context.Background(), "p1", date("2024-07-10"), date("2024-07-12"))
	require.ErrorIs(t, err, ErrUnavailable)
	require.NotErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStorePartialUpsert(t *testing.T) {
	s := NewMemoryStore()
	s.Fail = func(op string, key any) error {
		if op == "UpsertCalendarDay" && key.(time.Time).Equal(date("2024-07-11")) {
			return errors.New("disk full")
		}
		return nil
	}
	outcomes, err := s.UpsertCalendarDays(context.Background(), []models.CalendarDay{
		{PropertyID: "p1", Date: date("2024-07-10")},
		{PropertyID: "p1", Date: date("2024-07-11")},
	})
	require.NoError(t, err)
	require.NoError(t, outcomes[0].Err)
	require.ErrorIs(t, outcomes[1].Err, ErrUnavailable)
}
