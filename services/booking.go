package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/dzoniops/booking-service/api"
	"github.com/dzoniops/booking-service/availability"
	"github.com/dzoniops/booking-service/booking"
	"github.com/dzoniops/booking-service/metrics"
	"github.com/dzoniops/booking-service/middleware"
	"github.com/dzoniops/booking-service/models"
	"github.com/dzoniops/booking-service/store"
	"github.com/dzoniops/booking-service/utils"
)

// maxCalendarDays bounds a single GetCalendar range.
const maxCalendarDays = 366

type Server struct {
	api.UnimplementedBookingServiceServer

	store    store.Store
	manager  *booking.Manager
	calendar *availability.Adapter
	editor   *availability.Editor
	metrics  *metrics.Booking
	logger   log.Logger
}

func NewServer(s store.Store, m *booking.Manager, mt *metrics.Booking, logger log.Logger) *Server {
	adapter := availability.NewAdapter(s)
	return &Server{
		store:    s,
		manager:  m,
		calendar: adapter,
		editor:   availability.NewEditor(adapter),
		metrics:  mt,
		logger:   logger,
	}
}

func parseRange(in, out string) (time.Time, time.Time, error) {
	checkIn, err := utils.ParseDate(in)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	checkOut, err := utils.ParseDate(out)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return checkIn, checkOut, nil
}

func (s *Server) GetPriceQuote(ctx context.Context, req *api.PriceQuoteRequest) (*api.PriceQuoteResponse, error) {
	if err := utils.Validate.Struct(req); err != nil {
		return nil, invalidArgument(err)
	}
	checkIn, checkOut, err := parseRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, invalidArgument(err)
	}
	quote, err := s.manager.Quote(ctx, req.PropertyID, checkIn, checkOut)
	if err != nil {
		return nil, s.fail("GetPriceQuote", err)
	}
	return mapQuote(req.PropertyID, quote), nil
}

func (s *Server) CreateBooking(ctx context.Context, req *api.CreateBookingRequest) (*api.BookingResponse, error) {
	if err := utils.Validate.Struct(req); err != nil {
		return nil, invalidArgument(err)
	}
	checkIn, checkOut, err := parseRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, invalidArgument(err)
	}
	create := booking.CreateRequest{
		PropertyID: req.PropertyID,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     req.Guests,
	}
	if req.UserID != "" {
		create.UserID = &req.UserID
	}
	b, err := s.manager.Create(ctx, create)
	if err != nil {
		return nil, s.fail("CreateBooking", err)
	}
	s.metrics.Created.Inc()
	return &api.BookingResponse{Booking: mapBooking(b)}, nil
}

func (s *Server) ConfirmBooking(ctx context.Context, req *api.IDRequest) (*api.BookingResponse, error) {
	return s.transition(ctx, "ConfirmBooking", req, models.CONFIRMED, s.manager.Confirm)
}

func (s *Server) CancelBooking(ctx context.Context, req *api.IDRequest) (*api.BookingResponse, error) {
	return s.transition(ctx, "CancelBooking", req, models.CANCELLED, s.manager.Cancel)
}

func (s *Server) transition(
	ctx context.Context,
	method string,
	req *api.IDRequest,
	to models.BookingStatus,
	apply func(context.Context, string) (*models.Booking, error),
) (*api.BookingResponse, error) {
	if !middleware.IsAdmin(ctx) {
		return nil, errAdminOnly
	}
	if err := utils.Validate.Struct(req); err != nil {
		return nil, invalidArgument(err)
	}
	b, err := apply(ctx, req.ID)
	if err != nil {
		result := "error"
		if errors.Is(err, booking.ErrInvalidTransition) {
			result = "invalid"
		}
		s.metrics.Transitions.WithLabelValues(string(to), result).Inc()
		return nil, s.fail(method, err)
	}
	s.metrics.Transitions.WithLabelValues(string(to), "ok").Inc()
	return &api.BookingResponse{Booking: mapBooking(b)}, nil
}

func (s *Server) GetBooking(ctx context.Context, req *api.IDRequest) (*api.BookingResponse, error) {
	if !middleware.IsAdmin(ctx) {
		return nil, errAdminOnly
	}
	if err := utils.Validate.Struct(req); err != nil {
		return nil, invalidArgument(err)
	}
	b, err := s.manager.Get(ctx, req.ID)
	if err != nil {
		return nil, s.fail("GetBooking", err)
	}
	return &api.BookingResponse{Booking: mapBooking(b)}, nil
}

func (s *Server) ListBookings(ctx context.Context, req *api.ListBookingsRequest) (*api.BookingsResponse, error) {
	if !middleware.IsAdmin(ctx) {
		return nil, errAdminOnly
	}
	if err := utils.Validate.Struct(req); err != nil {
		return nil, invalidArgument(err)
	}
	q := store.BookingQuery{PropertyID: req.PropertyID}
	if req.Status != "" {
		q.Statuses = []models.BookingStatus{models.BookingStatus(req.Status)}
	}
	bookings, err := s.manager.List(ctx, q)
	if err != nil {
		return nil, s.fail("ListBookings", err)
	}
	return &api.BookingsResponse{Bookings: mapBookings(bookings)}, nil
}

func (s *Server) FindGuestBookings(ctx context.Context, req *api.FindGuestBookingsRequest) (*api.BookingsResponse, error) {
	if err := utils.Validate.Struct(req); err != nil {
		return nil, invalidArgument(err)
	}
	checkIn, checkOut, err := parseRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, invalidArgument(err)
	}
	bookings, err := s.manager.FindGuestBookings(ctx, req.GuestEmail, checkIn, checkOut)
	if err != nil {
		return nil, s.fail("FindGuestBookings", err)
	}
	return &api.BookingsResponse{Bookings: mapBookings(bookings)}, nil
}

func (s *Server) SetAvailability(ctx context.Context, req *api.SetAvailabilityRequest) (*api.SetAvailabilityResponse, error) {
	if !middleware.IsAdmin(ctx) {
		return nil, errAdminOnly
	}
	if err := utils.Validate.Struct(req); err != nil {
		return nil, invalidArgument(err)
	}
	dates, err := utils.ParseDates(req.Dates)
	if err != nil {
		return nil, invalidArgument(err)
	}
	if len(dates) > 0 {
		if _, err := s.store.GetProperty(ctx, req.PropertyID); err != nil {
			return nil, s.fail("SetAvailability", err)
		}
	}
	res, err := s.editor.Apply(ctx, availability.Change{
		PropertyID:    req.PropertyID,
		Dates:         dates,
		IsAvailable:   req.IsAvailable,
		PriceOverride: req.PriceOverride,
	})
	s.metrics.DaysWritten.Add(float64(len(res.Written)))
	s.metrics.DaysFailed.Add(float64(len(res.Failed)))
	if err != nil {
		return nil, s.fail("SetAvailability", err)
	}
	out := &api.SetAvailabilityResponse{Written: make([]string, len(res.Written))}
	for i, d := range res.Written {
		out.Written[i] = utils.FormatDate(d)
	}
	for _, f := range res.Failed {
		out.Failed = append(out.Failed, api.FailedDate{Date: utils.FormatDate(f.Date), Error: f.Err.Error()})
	}
	if !res.OK() {
		level.Warn(s.logger).Log(
			"msg", "partial availability update",
			"property_id", req.PropertyID,
			"written", len(res.Written),
			"failed", len(res.Failed),
		)
	}
	return out, nil
}

// GetCalendar renders the effective state of every date in from..to: the
// stored override if any, else available at base price, plus booked nights.
func (s *Server) GetCalendar(ctx context.Context, req *api.CalendarRequest) (*api.CalendarResponse, error) {
	if err := utils.Validate.Struct(req); err != nil {
		return nil, invalidArgument(err)
	}
	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		return nil, invalidArgument(err)
	}
	span := models.NightsBetween(from, to) + 1
	if span < 1 || span > maxCalendarDays {
		return nil, invalidArgument(fmt.Errorf("range must cover 1 to %d days", maxCalendarDays))
	}
	p, err := s.visibleProperty(ctx, req.PropertyID)
	if err != nil {
		return nil, s.fail("GetCalendar", err)
	}
	days, err := s.calendar.FetchRange(ctx, p.ID, from, to)
	if err != nil {
		return nil, s.fail("GetCalendar", err)
	}
	bookings, err := s.store.QueryBookings(ctx, store.BookingQuery{
		PropertyID: p.ID,
		Statuses:   models.ActiveStatuses,
		From:       from,
		To:         to.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, s.fail("GetCalendar", err)
	}
	idx := models.IndexDays(days)
	out := &api.CalendarResponse{PropertyID: p.ID, BasePrice: p.PricePerNight, Days: make([]api.CalendarDay, span)}
	for i := range out.Days {
		d := from.AddDate(0, 0, i)
		row := idx.Lookup(d)
		out.Days[i] = api.CalendarDay{
			Date:        utils.FormatDate(d),
			IsAvailable: models.IsAvailable(row),
			Booked:      booked(bookings, d),
			Price:       models.PriceFor(row, p.PricePerNight),
			Overridden:  models.HasOverride(row),
		}
	}
	return out, nil
}

func booked(bookings []models.Booking, night time.Time) bool {
	for i := range bookings {
		if bookings[i].Overlaps(night, night.AddDate(0, 0, 1)) {
			return true
		}
	}
	return false
}

// visibleProperty hides inactive properties from everyone but admins.
func (s *Server) visibleProperty(ctx context.Context, id string) (*models.Property, error) {
	p, err := s.store.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive && !middleware.IsAdmin(ctx) {
		return nil, booking.ErrPropertyNotFound
	}
	return p, nil
}

func (s *Server) SaveProperty(ctx context.Context, req *api.SavePropertyRequest) (*api.PropertyResponse, error) {
	if !middleware.IsAdmin(ctx) {
		return nil, errAdminOnly
	}
	if err := utils.Validate.Struct(req); err != nil {
		return nil, invalidArgument(err)
	}
	p := propertyFromAPI(req.Property)
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else {
		existing, err := s.store.GetProperty(ctx, p.ID)
		switch {
		case err == nil:
			p.CreatedAt = existing.CreatedAt
		case !errors.Is(err, store.ErrNotFound):
			return nil, s.fail("SaveProperty", err)
		}
	}
	if err := s.store.SaveProperty(ctx, p); err != nil {
		return nil, s.fail("SaveProperty", err)
	}
	level.Info(s.logger).Log("msg", "property saved", "property_id", p.ID, "active", p.IsActive)
	return &api.PropertyResponse{Property: mapProperty(p)}, nil
}

func (s *Server) GetProperty(ctx context.Context, req *api.IDRequest) (*api.PropertyResponse, error) {
	if err := utils.Validate.Struct(req); err != nil {
		return nil, invalidArgument(err)
	}
	p, err := s.visibleProperty(ctx, req.ID)
	if err != nil {
		return nil, s.fail("GetProperty", err)
	}
	return &api.PropertyResponse{Property: mapProperty(p)}, nil
}

func (s *Server) ListProperties(ctx context.Context, req *api.ListPropertiesRequest) (*api.PropertiesResponse, error) {
	activeOnly := !(req.IncludeInactive && middleware.IsAdmin(ctx))
	properties, err := s.store.ListProperties(ctx, activeOnly)
	if err != nil {
		return nil, s.fail("ListProperties", err)
	}
	out := &api.PropertiesResponse{Properties: make([]*api.Property, len(properties))}
	for i := range properties {
		out.Properties[i] = mapProperty(&properties[i])
	}
	return out, nil
}
