package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/dzoniops/booking-service/models"
	"github.com/dzoniops/booking-service/store"
)

// Adapter translates range reads and bulk writes against the record store into
// CalendarDay values.
type Adapter struct {
	store store.Store
}

func NewAdapter(s store.Store) *Adapter {
	return &Adapter{store: s}
}

// UpsertResult lists the keys that were written and those the caller should
// retry.
type UpsertResult struct {
	Written []time.Time
	Failed  []FailedDay
}

type FailedDay struct {
	Date time.Time
	Err  error
}

func (r UpsertResult) OK() bool {
	return len(r.Failed) == 0
}

// FetchRange returns the stored rows for start..end inclusive, one per date.
// Dates without a row are absent and mean "available at base price".
func (a *Adapter) FetchRange(ctx context.Context, propertyID string, start, end time.Time) ([]models.CalendarDay, error) {
	start, end = models.Day(start), models.Day(end)
	if end.Before(start) {
		return nil, nil
	}
	days, err := a.store.QueryCalendarDays(ctx, propertyID, start, end)
	if err != nil {
		return nil, err
	}
	return dedupe(days), nil
}

// UpsertMany writes days keyed by (property_id, date), fully replacing any
// existing row. Partial failures are reported in the result, not as an error;
// the error is set only when nothing could be written.
func (a *Adapter) UpsertMany(ctx context.Context, days []models.CalendarDay) (UpsertResult, error) {
	var res UpsertResult
	if len(days) == 0 {
		return res, nil
	}
	outcomes, err := a.store.UpsertCalendarDays(ctx, days)
	if err != nil {
		for _, d := range days {
			res.Failed = append(res.Failed, FailedDay{Date: models.Day(d.Date), Err: err})
		}
		return res, err
	}
	for _, o := range outcomes {
		if o.Err != nil {
			res.Failed = append(res.Failed, FailedDay{Date: o.Date, Err: o.Err})
			continue
		}
		res.Written = append(res.Written, o.Date)
	}
	if len(res.Written) == 0 && len(res.Failed) > 0 {
		return res, fmt.Errorf("availability: all %d days failed: %w", len(res.Failed), res.Failed[0].Err)
	}
	return res, nil
}

// dedupe keeps the last row per date; stores return sorted rows so duplicates
// are adjacent.
func dedupe(days []models.CalendarDay) []models.CalendarDay {
	if len(days) < 2 {
		return days
	}
	out := days[:0]
	for _, d := range days {
		d.Date = models.Day(d.Date)
		if n := len(out); n > 0 && out[n-1].Date.Equal(d.Date) {
			out[n-1] = d
			continue
		}
		out = append(out, d)
	}
	return out
}
