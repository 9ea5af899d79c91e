package booking

import (
	"fmt"
	"iter"
	"time"
)

// MaxHorizonDays bounds how far past its first date a recurring request may reach.
const MaxHorizonDays = 90

// Pattern is a validated recurrence over civil dates.
type Pattern struct {
	Kind  Recurrence
	Start time.Time
	Until time.Time
	Days  Weekdays
}

// NewPattern normalises a recurrence request. until is capped at
// start+MaxHorizonDays; a zero until means the full horizon. Weekly
// patterns without days repeat on the start's weekday.
func NewPattern(kind Recurrence, start, until time.Time, days Weekdays) (Pattern, error) {
	if !kind.Valid() {
		return Pattern{}, fmt.Errorf("%w: unknown recurrence %q", ErrInvalidRequest, kind)
	}

	start = midnight(start)
	p := Pattern{Kind: kind, Start: start, Until: start, Days: days}
	if kind == RecurrenceNone {
		return p, nil
	}

	horizon := start.AddDate(0, 0, MaxHorizonDays)
	switch {
	case until.IsZero():
		p.Until = horizon
	case midnight(until).Before(start):
		return Pattern{}, fmt.Errorf("%w: recurring_until is before the start date", ErrInvalidRequest)
	case midnight(until).After(horizon):
		p.Until = horizon
	default:
		p.Until = midnight(until)
	}

	if kind == RecurrenceWeekly && len(p.Days) == 0 {
		p.Days = Weekdays{start.Weekday()}
	}
	return p, nil
}

// Dates yields the matching dates from Start through Until in order. The
// sequence is finite and can be ranged over any number of times.
func (p Pattern) Dates() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		switch p.Kind {
		case RecurrenceNone:
			yield(p.Start)
		case RecurrenceDaily, RecurrenceWeekly:
			for d := p.Start; !d.After(p.Until); d = d.AddDate(0, 0, 1) {
				if p.Kind == RecurrenceWeekly && !p.Days.Contains(d.Weekday()) {
					continue
				}
				if !yield(d) {
					return
				}
			}
		case RecurrenceMonthly:
			y, m, day := p.Start.Date()
			for i := 0; ; i++ {
				d := time.Date(y, m+time.Month(i), day, 0, 0, 0, 0, p.Start.Location())
				if d.After(p.Until) {
					return
				}
				// Months without this day roll over into the next; skip them.
				if d.Day() != day {
					continue
				}
				if !yield(d) {
					return
				}
			}
		}
	}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
