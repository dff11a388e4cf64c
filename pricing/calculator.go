package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/dzoniops/booking-service/models"
)

var (
	ErrNoNights   = errors.New("pricing: stay has no nights")
	ErrBadPercent = errors.New("pricing: service fee percent must be within 0..100")
	ErrNegative   = errors.New("pricing: amounts must not be negative")
)

// Fees are the per-stay charges added on top of the nightly subtotal.
type Fees struct {
	Flat    int64 `json:"flat"`
	Percent int64 `json:"percent"`
}

func (f Fees) Validate() error {
	if f.Percent < 0 || f.Percent > 100 {
		return fmt.Errorf("%w: got %d", ErrBadPercent, f.Percent)
	}
	if f.Flat < 0 {
		return fmt.Errorf("%w: flat fee %d", ErrNegative, f.Flat)
	}
	return nil
}

type Night struct {
	Date       time.Time `json:"date"`
	Price      int64     `json:"price"`
	Overridden bool      `json:"overridden"`
}

// Breakdown is the itemised price of a stay. Amounts are minor currency units.
type Breakdown struct {
	Nights      int     `json:"nights"`
	PerNight    []Night `json:"per_night"`
	Subtotal    int64   `json:"subtotal"`
	CleaningFee int64   `json:"cleaning_fee"`
	ServiceFee  int64   `json:"service_fee"`
	Total       int64   `json:"total"`
}

// Calculate prices the stay [checkIn, checkOut) night by night. Overrides may be
// in any order and may cover dates outside the stay.
func Calculate(
	checkIn, checkOut time.Time,
	base int64,
	overrides []models.CalendarDay,
	fees Fees,
) (Breakdown, error) {
	if err := fees.Validate(); err != nil {
		return Breakdown{}, err
	}
	dates := models.Nights(checkIn, checkOut)
	if len(dates) == 0 {
		return Breakdown{}, ErrNoNights
	}
	idx := models.IndexDays(overrides)

	b := Breakdown{
		Nights:      len(dates),
		PerNight:    make([]Night, len(dates)),
		CleaningFee: fees.Flat,
	}
	for i, d := range dates {
		row := idx.Lookup(d)
		price := models.PriceFor(row, base)
		b.PerNight[i] = Night{Date: d, Price: price, Overridden: models.HasOverride(row)}
		b.Subtotal += price
	}
	b.ServiceFee = PercentOf(b.Subtotal, fees.Percent)
	b.Total = b.Subtotal + b.CleaningFee + b.ServiceFee
	return b, nil
}

// PercentOf rounds amount*percent/100 half up to the nearest minor unit.
func PercentOf(amount, percent int64) int64 {
	return (amount*percent + 50) / 100
}
