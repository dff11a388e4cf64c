package availability

import (
	"context"
	"sort"
	"time"

	"github.com/dzoniops/booking-service/models"
)

// Change is one admin edit applied to every selected date.
type Change struct {
	PropertyID    string
	Dates         []time.Time
	IsAvailable   bool
	PriceOverride *int64
}

// Editor applies admin calendar edits. It never looks at bookings: blocking a
// booked date leaves the booking in place.
type Editor struct {
	adapter *Adapter
}

func NewEditor(a *Adapter) *Editor {
	return &Editor{adapter: a}
}

func (e *Editor) Apply(ctx context.Context, c Change) (UpsertResult, error) {
	if len(c.Dates) == 0 {
		return UpsertResult{}, models.Reject(models.ReasonNoDatesSelected, "")
	}
	if c.PriceOverride != nil && *c.PriceOverride <= 0 {
		return UpsertResult{}, models.Reject(models.ReasonInvalidPriceOverride, "override must be positive")
	}
	dates := uniqueDays(c.Dates)
	days := make([]models.CalendarDay, len(dates))
	for i, d := range dates {
		days[i] = models.CalendarDay{
			PropertyID:  c.PropertyID,
			Date:        d,
			IsAvailable: c.IsAvailable,
		}
		if c.PriceOverride != nil {
			v := *c.PriceOverride
			days[i].PriceOverride = &v
		}
	}
	return e.adapter.UpsertMany(ctx, days)
}

func uniqueDays(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		d = models.Day(d)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
