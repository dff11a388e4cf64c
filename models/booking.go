package models

import (
	"time"
)

type BookingStatus string

const (
	PENDING   BookingStatus = "pending"
	CONFIRMED BookingStatus = "confirmed"
	CANCELLED BookingStatus = "cancelled"
)

// Active statuses occupy nights on the property calendar.
var ActiveStatuses = []BookingStatus{PENDING, CONFIRMED}

func (s BookingStatus) Active() bool {
	return s == PENDING || s == CONFIRMED
}

func (s BookingStatus) Terminal() bool {
	return s == CONFIRMED || s == CANCELLED
}

func (s BookingStatus) Valid() bool {
	return s == PENDING || s == CONFIRMED || s == CANCELLED
}

type Booking struct {
	ID          string        `json:"id"                gorm:"primaryKey;size:36"`
	PropertyID  string        `json:"property_id"       gorm:"size:36;not null;index:idx_booking_property_range"`
	UserID      *string       `json:"user_id,omitempty" gorm:"size:64"`
	GuestName   string        `json:"guest_name"        gorm:"not null"`
	GuestEmail  string        `json:"guest_email"       gorm:"not null;index"`
	CheckIn     time.Time     `json:"check_in"          gorm:"type:date;not null;index:idx_booking_property_range"`
	CheckOut    time.Time     `json:"check_out"         gorm:"type:date;not null;index:idx_booking_property_range"`
	Guests      int           `json:"guests"            gorm:"not null"`
	Nights      int           `json:"nights"            gorm:"not null"`
	Subtotal    int64         `json:"subtotal"          gorm:"not null"`
	CleaningFee int64         `json:"cleaning_fee"      gorm:"not null"`
	ServiceFee  int64         `json:"service_fee"       gorm:"not null"`
	TotalPrice  int64         `json:"total_price"       gorm:"not null"`
	Status      BookingStatus `json:"status"            gorm:"size:16;not null;index"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Overlaps compares half-open [CheckIn, CheckOut) ranges; back-to-back stays
// do not overlap.
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return Day(b.CheckIn).Before(Day(checkOut)) && Day(checkIn).Before(Day(b.CheckOut))
}

// BookingNight reserves one night of a property for an active booking. The
// unique index on (property_id, night) is what rejects double bookings.
type BookingNight struct {
	PropertyID string    `gorm:"size:36;not null;uniqueIndex:idx_property_night"`
	Night      time.Time `gorm:"type:date;not null;uniqueIndex:idx_property_night"`
	BookingID  string    `gorm:"size:36;not null;index"`
}

// NightsFor expands a booking into its occupied nights.
func NightsFor(b *Booking) []BookingNight {
	dates := Nights(b.CheckIn, b.CheckOut)
	nights := make([]BookingNight, len(dates))
	for i, d := range dates {
		nights[i] = BookingNight{PropertyID: b.PropertyID, Night: d, BookingID: b.ID}
	}
	return nights
}
