package models

import "errors"

// Reason is a caller-correctable validation verdict. The string values are part
// of the public API.
type Reason string

const (
	ReasonInvalidRange         Reason = "invalid_range"
	ReasonInPast               Reason = "in_past"
	ReasonGuestCountExceeded   Reason = "guest_count_exceeded"
	ReasonDateUnavailable      Reason = "date_unavailable"
	ReasonOverlapsBooking      Reason = "overlaps_existing_booking"
	ReasonNoDatesSelected      Reason = "no_dates_selected"
	ReasonInvalidPriceOverride Reason = "invalid_price_override"
)

// Rejection is returned when a request fails validation. It is never retried.
type Rejection struct {
	Reason Reason
	Detail string
}

func Reject(r Reason, detail string) *Rejection {
	return &Rejection{Reason: r, Detail: detail}
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return string(r.Reason)
	}
	return string(r.Reason) + ": " + r.Detail
}

// ReasonOf extracts the rejection reason from err, if any.
func ReasonOf(err error) (Reason, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}
