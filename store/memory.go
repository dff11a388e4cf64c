package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/dzoniops/booking-service/models"
)

type nightKey struct {
	propertyID string
	night      time.Time
}

// MemoryStore keeps records in maps guarded by one mutex, which gives it the
// same night-uniqueness guarantee as the database constraint.
type MemoryStore struct {
	mu         sync.Mutex
	properties map[string]models.Property
	bookings   map[string]models.Booking
	nights     map[nightKey]string
	days       map[nightKey]models.CalendarDay
	now        func() time.Time

	// Fail, when set, is consulted before each operation (and for each
	// calendar key during upserts). A non-nil return fails that call.
	Fail func(op string, key any) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		properties: make(map[string]models.Property),
		bookings:   make(map[string]models.Booking),
		nights:     make(map[nightKey]string),
		days:       make(map[nightKey]models.CalendarDay),
		now:        time.Now,
	}
}

func (s *MemoryStore) check(ctx context.Context, op string, key any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if s.Fail != nil {
		if err := s.Fail(op, key); err != nil {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
	}
	return nil
}

func (s *MemoryStore) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	if err := s.check(ctx, "GetProperty", id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.properties[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) SaveProperty(ctx context.Context, p *models.Property) error {
	if err := s.check(ctx, "SaveProperty", p.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if old, ok := s.properties[p.ID]; ok {
		p.CreatedAt = old.CreatedAt
	} else if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.properties[p.ID] = *p
	return nil
}

func (s *MemoryStore) ListProperties(ctx context.Context, activeOnly bool) ([]models.Property, error) {
	if err := s.check(ctx, "ListProperties", nil); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Property
	for _, p := range s.properties {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	if err := s.check(ctx, "GetBooking", id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *MemoryStore) QueryBookings(ctx context.Context, q BookingQuery) ([]models.Booking, error) {
	if err := s.check(ctx, "QueryBookings", q); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		switch {
		case q.PropertyID != "" && b.PropertyID != q.PropertyID:
			continue
		case q.GuestEmail != "" && b.GuestEmail != q.GuestEmail:
			continue
		case len(q.Statuses) > 0 && !slices.Contains(q.Statuses, b.Status):
			continue
		case !q.To.IsZero() && !b.CheckIn.Before(models.Day(q.To)):
			continue
		case !q.From.IsZero() && !b.CheckOut.After(models.Day(q.From)):
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) InsertBooking(ctx context.Context, b *models.Booking) error {
	if err := s.check(ctx, "InsertBooking", b.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; ok {
		return ErrConflict
	}
	nights := models.NightsFor(b)
	for _, n := range nights {
		if _, taken := s.nights[nightKey{n.PropertyID, n.Night}]; taken {
			return ErrConflict
		}
	}
	for _, n := range nights {
		s.nights[nightKey{n.PropertyID, n.Night}] = b.ID
	}
	now := s.now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	s.bookings[b.ID] = *b
	return nil
}

func (s *MemoryStore) UpdateBookingStatus(
	ctx context.Context,
	id string,
	from, to models.BookingStatus,
) (*models.Booking, error) {
	if err := s.check(ctx, "UpdateBookingStatus", id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Status != from {
		return &b, ErrStatusMismatch
	}
	b.Status = to
	b.UpdatedAt = s.now()
	s.bookings[id] = b
	if !to.Active() {
		for k, owner := range s.nights {
			if owner == id {
				delete(s.nights, k)
			}
		}
	}
	return &b, nil
}

func (s *MemoryStore) QueryCalendarDays(
	ctx context.Context,
	propertyID string,
	start, end time.Time,
) ([]models.CalendarDay, error) {
	if err := s.check(ctx, "QueryCalendarDays", propertyID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	start, end = models.Day(start), models.Day(end)
	var out []models.CalendarDay
	for k, d := range s.days {
		if k.propertyID != propertyID || k.night.Before(start) || k.night.After(end) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *MemoryStore) UpsertCalendarDays(ctx context.Context, days []models.CalendarDay) ([]UpsertOutcome, error) {
	if err := s.check(ctx, "UpsertCalendarDays", nil); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	outcomes := make([]UpsertOutcome, len(days))
	now := s.now()
	for i, d := range days {
		d.Date = models.Day(d.Date)
		outcomes[i] = UpsertOutcome{PropertyID: d.PropertyID, Date: d.Date}
		if s.Fail != nil {
			if err := s.Fail("UpsertCalendarDay", d.Date); err != nil {
				outcomes[i].Err = fmt.Errorf("%w: %w", ErrUnavailable, err)
				continue
			}
		}
		if d.PriceOverride != nil {
			v := *d.PriceOverride
			d.PriceOverride = &v
		}
		d.UpdatedAt = now
		s.days[nightKey{d.PropertyID, d.Date}] = d
	}
	return outcomes, nil
}
