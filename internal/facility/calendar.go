package facility

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"
)

const (
	SlotStep    = time.Hour
	MinLeadTime = time.Hour
)

var ErrInvalidClock = errors.New("invalid clock time, expected HH:MM")

// DayName is the operating-hours key for date.
func DayName(date time.Time) string {
	return date.Weekday().String()
}

// Date truncates t to midnight in its own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseClock parses "HH:MM" (seconds are tolerated) into minutes since midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) == 8 {
		s = s[:5]
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// At combines a civil date with an "HH:MM" time of day in the date's location.
func At(date time.Time, clock string) (time.Time, error) {
	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return clockOn(date, minutes), nil
}

func clockOn(date time.Time, minutes int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, date.Location())
}

// Slots yields the bookable hourly slots of date, morning window first.
// Each window runs from its open time in one-hour steps up to and including
// its close time. Slots starting before now+MinLeadTime are skipped. A nil
// hours record, or one with both windows closed, yields nothing.
func Slots(hours *OperatingHours, date, now time.Time) iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		if hours == nil {
			return
		}
		day := Date(date)
		cutoff := now.Add(MinLeadTime)

		for _, w := range [][2]*string{
			{hours.MorningOpen, hours.MorningClose},
			{hours.EveningOpen, hours.EveningClose},
		} {
			from, to, ok := window(w[0], w[1])
			if !ok {
				continue
			}
			for m := from; m <= to; m += int(SlotStep / time.Minute) {
				start := clockOn(day, m)
				if start.Before(cutoff) {
					continue
				}
				if !yield(Slot{Date: day, Time: FormatClock(m), Start: start}) {
					return
				}
			}
		}
	}
}

// HasSlot reports whether clock is one of date's bookable slots at now.
func HasSlot(hours *OperatingHours, date time.Time, clock string, now time.Time) bool {
	want, err := ParseClock(clock)
	if err != nil {
		return false
	}
	for s := range Slots(hours, date, now) {
		if m, _ := ParseClock(s.Time); m == want {
			return true
		}
	}
	return false
}

func window(opens, closes *string) (int, int, bool) {
	if isClosed(opens) || isClosed(closes) {
		return 0, 0, false
	}
	o, err := ParseClock(*opens)
	if err != nil {
		return 0, 0, false
	}
	c, err := ParseClock(*closes)
	if err != nil || c < o {
		return 0, 0, false
	}
	return o, c, true
}

func isClosed(v *string) bool {
	if v == nil {
		return true
	}
	s := strings.TrimSpace(*v)
	return s == "" || strings.EqualFold(s, "closed")
}
