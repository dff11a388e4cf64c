package models

import (
	"time"
)

// MaxStayNights bounds a single stay.
const MaxStayNights = 365

const secondsPerDay = 24 * 60 * 60

// CalendarDay is the availability and price state of one property on one date.
// A missing row means the date is available at the property's base price.
type CalendarDay struct {
	PropertyID    string    `json:"property_id"              gorm:"primaryKey;size:36"`
	Date          time.Time `json:"date"                     gorm:"primaryKey;type:date"`
	IsAvailable   bool      `json:"is_available"             gorm:"not null"`
	PriceOverride *int64    `json:"price_override,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (CalendarDay) TableName() string {
	return "listing_availability"
}

// IsAvailable reports whether a stay may include day. Nil means no row exists.
func IsAvailable(day *CalendarDay) bool {
	if day == nil {
		return true
	}
	return day.IsAvailable
}

// HasOverride reports whether day carries a usable (positive) price override.
func HasOverride(day *CalendarDay) bool {
	return day != nil && day.PriceOverride != nil && *day.PriceOverride > 0
}

// PriceFor returns the nightly price for day, falling back to base.
func PriceFor(day *CalendarDay, base int64) int64 {
	if HasOverride(day) {
		return *day.PriceOverride
	}
	return base
}

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NightsBetween counts calendar-day boundaries between two dates. Time of day
// and zone offsets are discarded first, so DST shifts cannot change the result.
// Unix seconds are used because time.Duration saturates after ~292 years.
func NightsBetween(checkIn, checkOut time.Time) int {
	return int((Day(checkOut).Unix() - Day(checkIn).Unix()) / secondsPerDay)
}

// Nights lists every date in the half-open range [checkIn, checkOut).
func Nights(checkIn, checkOut time.Time) []time.Time {
	n := NightsBetween(checkIn, checkOut)
	if n <= 0 {
		return nil
	}
	nights := make([]time.Time, n)
	start := Day(checkIn)
	for i := range nights {
		nights[i] = start.AddDate(0, 0, i)
	}
	return nights
}

// DayIndex keys calendar rows by date for range lookups.
type DayIndex map[time.Time]*CalendarDay

func IndexDays(days []CalendarDay) DayIndex {
	idx := make(DayIndex, len(days))
	for i := range days {
		idx[Day(days[i].Date)] = &days[i]
	}
	return idx
}

// Lookup returns the row for date or nil.
func (idx DayIndex) Lookup(date time.Time) *CalendarDay {
	return idx[Day(date)]
}
