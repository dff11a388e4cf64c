package booking

import (
	"fmt"
	"time"

	"github.com/dzoniops/booking-service/models"
)

// StayRequest is everything the validator needs to judge a proposed stay.
// Bookings and Days should cover [CheckIn, CheckOut); extra rows are ignored.
type StayRequest struct {
	Property *models.Property
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
	Bookings []models.Booking
	Days     []models.CalendarDay
	Today    time.Time
}

// CheckRequest runs the checks that need no stored state: range, past dates
// and guest count.
func CheckRequest(p *models.Property, checkIn, checkOut time.Time, guests int, today time.Time) *models.Rejection {
	if rej := CheckRange(checkIn, checkOut); rej != nil {
		return rej
	}
	if models.Day(checkIn).Before(models.Day(today.UTC())) {
		return models.Reject(models.ReasonInPast, "check-in is before today")
	}
	if guests < 1 || guests > p.MaxGuests {
		return models.Reject(models.ReasonGuestCountExceeded,
			fmt.Sprintf("guests must be between 1 and %d", p.MaxGuests))
	}
	return nil
}

// CheckRange rejects empty, reversed and over-long stays.
func CheckRange(checkIn, checkOut time.Time) *models.Rejection {
	nights := models.NightsBetween(checkIn, checkOut)
	switch {
	case nights < 1:
		return models.Reject(models.ReasonInvalidRange, "check-out must be after check-in")
	case nights > models.MaxStayNights:
		return models.Reject(models.ReasonInvalidRange,
			fmt.Sprintf("stay of %d nights exceeds the %d night limit", nights, models.MaxStayNights))
	}
	return nil
}

// Validate accepts (nil) or rejects a stay, stopping at the first failed check.
func Validate(req StayRequest) *models.Rejection {
	if rej := CheckRequest(req.Property, req.CheckIn, req.CheckOut, req.Guests, req.Today); rej != nil {
		return rej
	}
	idx := models.IndexDays(req.Days)
	for _, night := range models.Nights(req.CheckIn, req.CheckOut) {
		if !models.IsAvailable(idx.Lookup(night)) {
			return models.Reject(models.ReasonDateUnavailable, night.Format(time.DateOnly))
		}
	}
	for i := range req.Bookings {
		b := &req.Bookings[i]
		if b.PropertyID != req.Property.ID || !b.Status.Active() {
			continue
		}
		if b.Overlaps(req.CheckIn, req.CheckOut) {
			return models.Reject(models.ReasonOverlapsBooking, "dates overlap an existing booking")
		}
	}
	return nil
}
