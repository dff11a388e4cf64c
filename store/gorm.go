package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dzoniops/booking-service/models"
)

type GormStore struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormStore wraps db. Every call is bounded by timeout when it is positive.
// db should be opened with TranslateError so unique violations map to
// ErrConflict.
func NewGormStore(db *gorm.DB, timeout time.Duration) *GormStore {
	return &GormStore{db: db, timeout: timeout}
}

func (s *GormStore) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if s.timeout <= 0 {
		return s.db.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}

func (s *GormStore) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	var p models.Property
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) SaveProperty(ctx context.Context, p *models.Property) error {
	db, cancel := s.conn(ctx)
	defer cancel()
	return translate(db.Save(p).Error)
}

func (s *GormStore) ListProperties(ctx context.Context, activeOnly bool) ([]models.Property, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	var properties []models.Property
	q := db.Order("created_at ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&properties).Error; err != nil {
		return nil, translate(err)
	}
	return properties, nil
}

func (s *GormStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	var b models.Booking
	if err := db.Where("id = ?", id).First(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (s *GormStore) QueryBookings(ctx context.Context, q BookingQuery) ([]models.Booking, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	tx := db.Order("created_at DESC")
	if q.PropertyID != "" {
		tx = tx.Where("property_id = ?", q.PropertyID)
	}
	if q.GuestEmail != "" {
		tx = tx.Where("guest_email = ?", q.GuestEmail)
	}
	if len(q.Statuses) > 0 {
		tx = tx.Where("status IN ?", q.Statuses)
	}
	if !q.To.IsZero() {
		tx = tx.Where("check_in < ?", models.Day(q.To))
	}
	if !q.From.IsZero() {
		tx = tx.Where("check_out > ?", models.Day(q.From))
	}
	var bookings []models.Booking
	if err := tx.Find(&bookings).Error; err != nil {
		return nil, translate(err)
	}
	return bookings, nil
}

func (s *GormStore) InsertBooking(ctx context.Context, b *models.Booking) error {
	db, cancel := s.conn(ctx)
	defer cancel()
	nights := models.NightsFor(b)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		if len(nights) == 0 {
			return nil
		}
		return tx.Create(&nights).Error
	})
	return translate(err)
}

func (s *GormStore) UpdateBookingStatus(
	ctx context.Context,
	id string,
	from, to models.BookingStatus,
) (*models.Booking, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	var booking models.Booking
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", id, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Where("id = ?", id).First(&booking).Error; err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return ErrStatusMismatch
		}
		if to.Active() {
			return nil
		}
		return tx.Where("booking_id = ?", id).Delete(&models.BookingNight{}).Error
	})
	switch {
	case errors.Is(err, ErrStatusMismatch):
		return &booking, err
	case err != nil:
		return nil, translate(err)
	}
	return &booking, nil
}

func (s *GormStore) QueryCalendarDays(
	ctx context.Context,
	propertyID string,
	start, end time.Time,
) ([]models.CalendarDay, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	var days []models.CalendarDay
	err := db.Where("property_id = ? AND date >= ? AND date <= ?", propertyID, models.Day(start), models.Day(end)).
		Order("date ASC").
		Find(&days).Error
	if err != nil {
		return nil, translate(err)
	}
	return days, nil
}

var calendarUpsert = clause.OnConflict{
	Columns:   []clause.Column{{Name: "property_id"}, {Name: "date"}},
	DoUpdates: clause.AssignmentColumns([]string{"is_available", "price_override", "updated_at"}),
}

// UpsertCalendarDays writes the batch in one statement and falls back to
// row-by-row writes when it fails, so the caller learns which keys to retry.
func (s *GormStore) UpsertCalendarDays(ctx context.Context, days []models.CalendarDay) ([]UpsertOutcome, error) {
	if len(days) == 0 {
		return nil, nil
	}
	db, cancel := s.conn(ctx)
	defer cancel()
	for i := range days {
		days[i].Date = models.Day(days[i].Date)
	}
	outcomes := make([]UpsertOutcome, len(days))
	for i, d := range days {
		outcomes[i] = UpsertOutcome{PropertyID: d.PropertyID, Date: d.Date}
	}
	if err := db.Clauses(calendarUpsert).Create(&days).Error; err == nil {
		return outcomes, nil
	}
	for i := range days {
		if err := db.Clauses(calendarUpsert).Create(&days[i]).Error; err != nil {
			outcomes[i].Err = translate(err)
		}
	}
	return outcomes, nil
}
