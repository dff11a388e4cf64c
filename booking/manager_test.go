package booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dzoniops/booking-service/availability"
	"github.com/dzoniops/booking-service/models"
	"github.com/dzoniops/booking-service/pricing"
	"github.com/dzoniops/booking-service/store"
)

var fees = pricing.Fees{Flat: 750, Percent: 14}

func newManager(t *testing.T) (*Manager, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	require.NoError(t, s.SaveProperty(context.Background(), &models.Property{
		ID: "p1", Title: "Cabin", Location: "Åre", PricePerNight: 1000, MaxGuests: 4, IsActive: true,
	}))
	var seq atomic.Int64
	m := NewManager(s, fees,
		WithClock(func() time.Time { return date("2024-07-01") }),
		WithIDs(func() string { return fmt.Sprintf("b%d", seq.Add(1)) }),
	)
	return m, s
}

func request(in, out string, guests int) CreateRequest {
	return CreateRequest{
		PropertyID: "p1",
		GuestName:  "Ada Lovelace",
		GuestEmail: "ada@example.com",
		CheckIn:    date(in),
		CheckOut:   date(out),
		Guests:     guests,
	}
}

func requireRejected(t *testing.T, want models.Reason, err error) {
	t.Helper()
	reason, ok := models.ReasonOf(err)
	require.True(t, ok, "expected rejection, got %v", err)
	require.Equal(t, want, reason)
}

func TestCreatePricesServerSide(t *testing.T) {
	m, _ := newManager(t)

	b, err := m.Create(context.Background(), request("2024-07-10", "2024-07-12", 2))
	require.NoError(t, err)
	require.Equal(t, models.PENDING, b.Status)
	require.Equal(t, 2, b.Nights)
	require.Equal(t, int64(2000), b.Subtotal)
	require.Equal(t, int64(750), b.CleaningFee)
	require.Equal(t, int64(280), b.ServiceFee)
	require.Equal(t, int64(3030), b.TotalPrice)
}

func TestCreateUsesOverrides(t *testing.T) {
	m, s := newManager(t)
	ctx := context.Background()
	override := int64(2000)
	_, err := availability.NewEditor(availability.NewAdapter(s)).Apply(ctx, availability.Change{
		PropertyID:    "p1",
		Dates:         []time.Time{date("2024-07-11")},
		IsAvailable:   true,
		PriceOverride: &override,
	})
	require.NoError(t, err)

	b, err := m.Create(ctx, request("2024-07-10", "2024-07-12", 2))
	require.NoError(t, err)
	require.Equal(t, int64(3000), b.Subtotal)
	require.Equal(t, int64(3000+750+420), b.TotalPrice)
}

func TestCreateRejectsZeroNights(t *testing.T) {
	m, s := newManager(t)
	_, err := m.Create(context.Background(), request("2024-07-10", "2024-07-10", 2))
	requireRejected(t, models.ReasonInvalidRange, err)

	all, err := s.QueryBookings(context.Background(), store.BookingQuery{})
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestCreateRejectsOverlongStay(t *testing.T) {
	m, s := newManager(t)
	ctx := context.Background()
	_, err := m.Create(ctx, request("2024-07-10", "2400-01-01", 2))
	requireRejected(t, models.ReasonInvalidRange, err)

	_, err = m.Quote(ctx, "p1", date("2024-07-10"), date("2400-01-01"))
	requireRejected(t, models.ReasonInvalidRange, err)

	all, err := s.QueryBookings(ctx, store.BookingQuery{})
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestDefaultClockIsUTC(t *testing.T) {
	m := NewManager(store.NewMemoryStore(), fees)
	require.Equal(t, time.UTC, m.now().Location())
}

func TestCreateRejectsTooManyGuests(t *testing.T) {
	m, s := newManager(t)
	_, err := availability.NewEditor(availability.NewAdapter(s)).Apply(context.Background(), availability.Change{
		PropertyID: "p1",
		Dates:      []time.Time{date("2024-07-10")},
	})
	require.NoError(t, err)

	_, err = m.Create(context.Background(), request("2024-07-10", "2024-07-12", 5))
	requireRejected(t, models.ReasonGuestCountExceeded, err)
}

func TestCreateRejectsBlockedDate(t *testing.T) {
	m, s := newManager(t)
	_, err := availability.NewEditor(availability.NewAdapter(s)).Apply(context.Background(), availability.Change{
		PropertyID: "p1",
		Dates:      []time.Time{date("2024-07-11")},
	})
	require.NoError(t, err)

	_, err = m.Create(context.Background(), request("2024-07-10", "2024-07-12", 2))
	requireRejected(t, models.ReasonDateUnavailable, err)
}

func TestCreateBackToBack(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	_, err := m.Create(ctx, request("2024-07-10", "2024-07-12", 2))
	require.NoError(t, err)

	_, err = m.Create(ctx, request("2024-07-12", "2024-07-14", 2))
	require.NoError(t, err)

	_, err = m.Create(ctx, request("2024-07-11", "2024-07-13", 2))
	requireRejected(t, models.ReasonOverlapsBooking, err)
}

func TestCreateConcurrentSameRange(t *testing.T) {
	m, _ := newManager(t)
	const n = 2
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.Create(context.Background(), request("2024-07-10", "2024-07-12", 2))
		}(i)
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		requireRejected(t, models.ReasonOverlapsBooking, err)
		rejected++
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, rejected)
}

func TestCreateUnknownOrInactiveProperty(t *testing.T) {
	m, s := newManager(t)
	ctx := context.Background()
	req := request("2024-07-10", "2024-07-12", 2)
	req.PropertyID = "nope"
	_, err := m.Create(ctx, req)
	require.ErrorIs(t, err, ErrPropertyNotFound)

	require.NoError(t, s.SaveProperty(ctx, &models.Property{ID: "p2", PricePerNight: 500, MaxGuests: 2}))
	req.PropertyID = "p2"
	_, err = m.Create(ctx, req)
	require.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestCreateInvalidGuestDetails(t *testing.T) {
	m, _ := newManager(t)
	req := request("2024-07-10", "2024-07-12", 2)
	req.GuestEmail = "not-an-email"
	_, err := m.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidRequest)

	req = request("2024-07-10", "2024-07-12", 2)
	req.GuestName = "   "
	_, err = m.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCreateStoreFailureIsNotARejection(t *testing.T) {
	m, s := newManager(t)
	s.Fail = func(op string, _ any) error {
		if op == "QueryBookings" {
			return context.DeadlineExceeded
		}
		return nil
	}
	_, err := m.Create(context.Background(), request("2024-07-10", "2024-07-12", 2))
	require.Error(t, err)
	require.True(t, store.IsTransient(err))
	_, rejected := models.ReasonOf(err)
	require.False(t, rejected)
}

func TestConfirmIsIdempotent(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	b, err := m.Create(ctx, request("2024-07-10", "2024-07-12", 2))
	require.NoError(t, err)

	first, err := m.Confirm(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, models.CONFIRMED, first.Status)

	second, err := m.Confirm(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, models.CONFIRMED, second.Status)

	_, err = m.Cancel(ctx, b.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelIsIdempotentAndTerminal(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	b, err := m.Create(ctx, request("2024-07-10", "2024-07-12", 2))
	require.NoError(t, err)

	_, err = m.Cancel(ctx, b.ID)
	require.NoError(t, err)
	again, err := m.Cancel(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, models.CANCELLED, again.Status)

	_, err = m.Confirm(ctx, b.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelReleasesDates(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	b, err := m.Create(ctx, request("2024-07-10", "2024-07-12", 2))
	require.NoError(t, err)
	_, err = m.Cancel(ctx, b.ID)
	require.NoError(t, err)

	_, err = m.Create(ctx, request("2024-07-10", "2024-07-12", 3))
	require.NoError(t, err)
}

func TestTransitionUnknownBooking(t *testing.T) {
	m, _ := newManager(t)
	_, err := m.Confirm(context.Background(), "missing")
	require.ErrorIs(t, err, ErrBookingNotFound)
}

func TestConcurrentConfirmAndCancel(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	b, err := m.Create(ctx, request("2024-07-10", "2024-07-12", 2))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var confirmErr, cancelErr error
	wg.Add(2)
	go func() { defer wg.Done(); _, confirmErr = m.Confirm(ctx, b.ID) }()
	go func() { defer wg.Done(); _, cancelErr = m.Cancel(ctx, b.ID) }()
	wg.Wait()

	// exactly one wins; the loser sees an invalid transition
	require.True(t, (confirmErr == nil) != (cancelErr == nil))
	loser := confirmErr
	if loser == nil {
		loser = cancelErr
	}
	require.ErrorIs(t, loser, ErrInvalidTransition)
}

func TestQuote(t *testing.T) {
	m, _ := newManager(t)
	q, err := m.Quote(context.Background(), "p1", date("2024-07-10"), date("2024-07-12"))
	require.NoError(t, err)
	require.Equal(t, int64(3030), q.Total)

	_, err = m.Quote(context.Background(), "p1", date("2024-07-10"), date("2024-07-10"))
	requireRejected(t, models.ReasonInvalidRange, err)
}

func TestFindGuestBookings(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	b, err := m.Create(ctx, request("2024-07-10", "2024-07-12", 2))
	require.NoError(t, err)
	_, err = m.Create(ctx, request("2024-07-20", "2024-07-22", 2))
	require.NoError(t, err)

	found, err := m.FindGuestBookings(ctx, "ada@example.com", date("2024-07-10"), date("2024-07-12"))
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, b.ID, found[0].ID)

	_, err = m.FindGuestBookings(ctx, " ", date("2024-07-10"), date("2024-07-12"))
	require.ErrorIs(t, err, ErrInvalidRequest)
}

// Random accepted requests must never leave two active bookings overlapping.
func TestNoOverlappingActiveBookings(t *testing.T) {
	m, s := newManager(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	start := date("2024-07-01")

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		in := start.AddDate(0, 0, rng.Intn(60))
		out := in.AddDate(0, 0, 1+rng.Intn(6))
		cancel := rng.Intn(5) == 0
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := request(in.Format(time.DateOnly), out.Format(time.DateOnly), 1)
			b, err := m.Create(ctx, req)
			if err != nil {
				if _, ok := models.ReasonOf(err); !ok {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if cancel {
				_, _ = m.Cancel(ctx, b.ID)
			}
		}()
	}
	wg.Wait()

	active, err := s.QueryBookings(ctx, store.BookingQuery{PropertyID: "p1", Statuses: models.ActiveStatuses})
	require.NoError(t, err)
	require.NotEmpty(t, active)
	for i := range active {
		for j := i + 1; j < len(active); j++ {
			require.False(t, active[i].Overlaps(active[j].CheckIn, active[j].CheckOut),
				"%s overlaps %s", active[i].ID, active[j].ID)
		}
	}
}

func TestRejectionIsAnError(t *testing.T) {
	var err error = models.Reject(models.ReasonInPast, "")
	require.True(t, errors.As(err, new(*models.Rejection)))
	require.Equal(t, "in_past", err.Error())
}
