package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dzoniops/booking-service/availability"
	"github.com/dzoniops/booking-service/models"
	"github.com/dzoniops/booking-service/pricing"
	"github.com/dzoniops/booking-service/store"
	"github.com/dzoniops/booking-service/utils"
)

var (
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrPropertyNotFound  = errors.New("property not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidRequest    = errors.New("invalid request")
)

type CreateRequest struct {
	PropertyID string  `validate:"required"`
	UserID     *string `validate:"omitempty,max=64"`
	GuestName  string  `validate:"notblank,max=200"`
	GuestEmail string  `validate:"required,email"`
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
}

// Manager owns booking records. Creation validates and prices on the server;
// status changes follow pending -> confirmed | cancelled.
type Manager struct {
	store  store.Store
	days   *availability.Adapter
	fees   pricing.Fees
	logger log.Logger
	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

type Option func(*Manager)

func WithLogger(l log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithIDs(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *Manager) { m.tracer = tp.Tracer("github.com/dzoniops/booking-service/booking") }
}

func NewManager(s store.Store, fees pricing.Fees, opts ...Option) *Manager {
	m := &Manager{
		store:  s,
		days:   availability.NewAdapter(s),
		fees:   fees,
		logger: log.NewNopLogger(),
		tracer: otel.Tracer("github.com/dzoniops/booking-service/booking"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Fees() pricing.Fees {
	return m.fees
}

// property returns an active property. Inactive ones are hidden from guests.
func (m *Manager) property(ctx context.Context, id string) (*models.Property, error) {
	p, err := m.store.GetProperty(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrPropertyNotFound
	case err != nil:
		return nil, err
	case !p.IsActive:
		return nil, ErrPropertyNotFound
	}
	return p, nil
}

// Quote prices a stay without reserving anything.
func (m *Manager) Quote(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (pricing.Breakdown, error) {
	checkIn, checkOut = models.Day(checkIn), models.Day(checkOut)
	if rej := CheckRange(checkIn, checkOut); rej != nil {
		return pricing.Breakdown{}, rej
	}
	p, err := m.property(ctx, propertyID)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	days, err := m.days.FetchRange(ctx, p.ID, checkIn, checkOut.AddDate(0, 0, -1))
	if err != nil {
		return pricing.Breakdown{}, err
	}
	return pricing.Calculate(checkIn, checkOut, p.PricePerNight, days, m.fees)
}

// Create validates the stay, recomputes its price and stores it as pending.
// Overlap is enforced by the store, so of two racing requests for the same
// nights exactly one is inserted.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (_ *models.Booking, err error) {
	ctx, span := m.tracer.Start(ctx, "booking.Create", trace.WithAttributes(
		attribute.String("property_id", req.PropertyID),
		attribute.Int("guests", req.Guests),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
		}
		span.End()
	}()

	req.GuestEmail = strings.TrimSpace(req.GuestEmail)
	req.GuestName = strings.TrimSpace(req.GuestName)
	if err := utils.Validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	checkIn, checkOut := models.Day(req.CheckIn), models.Day(req.CheckOut)

	p, err := m.property(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	today := m.now()
	if rej := CheckRequest(p, checkIn, checkOut, req.Guests, today); rej != nil {
		return nil, rej
	}

	days, err := m.days.FetchRange(ctx, p.ID, checkIn, checkOut.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}
	existing, err := m.store.QueryBookings(ctx, store.BookingQuery{
		PropertyID: p.ID,
		Statuses:   models.ActiveStatuses,
		From:       checkIn,
		To:         checkOut,
	})
	if err != nil {
		return nil, err
	}
	if rej := Validate(StayRequest{
		Property: p,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   req.Guests,
		Bookings: existing,
		Days:     days,
		Today:    today,
	}); rej != nil {
		return nil, rej
	}

	quote, err := pricing.Calculate(checkIn, checkOut, p.PricePerNight, days, m.fees)
	if err != nil {
		return nil, err
	}
	b := &models.Booking{
		ID:          m.newID(),
		PropertyID:  p.ID,
		UserID:      req.UserID,
		GuestName:   req.GuestName,
		GuestEmail:  req.GuestEmail,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Guests:      req.Guests,
		Nights:      quote.Nights,
		Subtotal:    quote.Subtotal,
		CleaningFee: quote.CleaningFee,
		ServiceFee:  quote.ServiceFee,
		TotalPrice:  quote.Total,
		Status:      models.PENDING,
	}
	if err := m.store.InsertBooking(ctx, b); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, models.Reject(models.ReasonOverlapsBooking, "dates were booked concurrently")
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("booking_id", b.ID))
	level.Info(m.logger).Log(
		"msg", "booking created",
		"booking_id", b.ID,
		"property_id", b.PropertyID,
		"check_in", utils.FormatDate(b.CheckIn),
		"check_out", utils.FormatDate(b.CheckOut),
		"total", b.TotalPrice,
	)
	return b, nil
}

func (m *Manager) Confirm(ctx context.Context, id string) (*models.Booking, error) {
	return m.transition(ctx, id, models.CONFIRMED)
}

func (m *Manager) Cancel(ctx context.Context, id string) (*models.Booking, error) {
	return m.transition(ctx, id, models.CANCELLED)
}

// transition is idempotent for the same target and rejects leaving a terminal
// status.
func (m *Manager) transition(ctx context.Context, id string, to models.BookingStatus) (_ *models.Booking, err error) {
	ctx, span := m.tracer.Start(ctx, "booking.Transition", trace.WithAttributes(
		attribute.String("booking_id", id),
		attribute.String("to", string(to)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
		}
		span.End()
	}()

	b, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == to {
		return b, nil
	}
	if b.Status != models.PENDING {
		return b, m.invalidTransition(b, to)
	}
	updated, err := m.store.UpdateBookingStatus(ctx, id, models.PENDING, to)
	switch {
	case errors.Is(err, store.ErrStatusMismatch):
		if updated.Status == to {
			return updated, nil
		}
		return updated, m.invalidTransition(updated, to)
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrBookingNotFound
	case err != nil:
		return nil, err
	}
	level.Info(m.logger).Log("msg", "booking status changed", "booking_id", id, "status", to)
	return updated, nil
}

func (m *Manager) invalidTransition(b *models.Booking, to models.BookingStatus) error {
	level.Warn(m.logger).Log(
		"msg", "rejected booking transition",
		"booking_id", b.ID,
		"from", b.Status,
		"to", to,
	)
	return fmt.Errorf("%w: booking is %s, cannot become %s", ErrInvalidTransition, b.Status, to)
}

func (m *Manager) Get(ctx context.Context, id string) (*models.Booking, error) {
	b, err := m.store.GetBooking(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

func (m *Manager) List(ctx context.Context, q store.BookingQuery) ([]models.Booking, error) {
	return m.store.QueryBookings(ctx, q)
}

// FindGuestBookings lets a caller whose create timed out check whether the
// booking was written before retrying.
func (m *Manager) FindGuestBookings(
	ctx context.Context,
	email string,
	checkIn, checkOut time.Time,
) ([]models.Booking, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: guest email is required", ErrInvalidRequest)
	}
	bookings, err := m.store.QueryBookings(ctx, store.BookingQuery{
		GuestEmail: email,
		From:       models.Day(checkIn),
		To:         models.Day(checkOut),
	})
	if err != nil {
		return nil, err
	}
	out := bookings[:0]
	for _, b := range bookings {
		if b.CheckIn.Equal(models.Day(checkIn)) && b.CheckOut.Equal(models.Day(checkOut)) {
			out = append(out, b)
		}
	}
	return out, nil
}
