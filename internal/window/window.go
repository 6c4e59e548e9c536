// Package window implements the temporal and opt-in filters that decide
// which records are due on the current run. Filters never mutate their
// input; they return an order-preserving subset.
package window

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "github.com/kitschmensch/sundaydinner/internal/log"
	"github.com/kitschmensch/sundaydinner/internal/model"
)

const (
	// DefaultEventDelta is the event lookahead in days.
	DefaultEventDelta = 2
	// DefaultBirthdayDelta is the birthday lookahead in days.
	DefaultBirthdayDelta = 14
)

// UpcomingEvents selects events whose Date field equals today+delta,
// formatted as zero-padded MM/DD/YYYY.
//
// The comparison is an exact string match, not a parsed-date comparison:
// an event dated "1/3/2024" will never match the target "01/03/2024". The
// sheet must carry zero-padded dates. This mirrors how the spreadsheet is
// maintained and is kept deliberately; changing it to date parsing would
// silently alter matching semantics for non-padded rows.
func UpcomingEvents(events []model.Event, delta int, today time.Time) []model.Event {
	target := today.AddDate(0, 0, delta).Format(model.DateLayout)

	out := make([]model.Event, 0)
	for _, ev := range events {
		date, ok := ev.Date()
		if !ok {
			continue
		}
		if date == target {
			out = append(out, ev)
		}
	}
	return out
}

// UpcomingBirthdays selects people whose birthday falls within the next
// delta days. People with a null or empty Birthday never match; a non-empty
// value that does not parse as MM/DD/YYYY is skipped with a warning.
//
// Default mode (rollForward=false) substitutes today's year into the
// birthday and includes the person iff 0 <= candidate-today <= delta days.
// A birthday already passed this year is excluded, and so is one occurring
// early next year even when it is only a day or two away (e.g. Dec 31
// checked from Dec 29), because the candidate is always built in today's
// year. That asymmetry is long-standing upstream behavior and is preserved.
//
// With rollForward=true the filter instead uses the next occurrence of the
// month/day on or after today (yearly recurrence), so windows crossing the
// year boundary match as one would expect.
func UpcomingBirthdays(people []model.Person, delta int, today time.Time, rollForward bool) []model.Person {
	today = midnight(today)

	out := make([]model.Person, 0)
	for _, p := range people {
		raw, ok := p.Birthday()
		if !ok || raw == "" {
			continue
		}

		parsed, err := time.ParseInLocation(model.DateLayout, raw, today.Location())
		if err != nil {
			name, _ := p.FullName()
			appLog.Warn("skipping unparseable birthday", "name", name, "birthday", raw)
			continue
		}

		var candidate time.Time
		if rollForward {
			candidate, err = nextOccurrence(parsed.Month(), parsed.Day(), today)
			if err != nil {
				name, _ := p.FullName()
				appLog.Warn("skipping birthday with no next occurrence", "name", name, "birthday", raw)
				continue
			}
		} else {
			candidate = time.Date(today.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, today.Location())
		}

		diff := daysBetween(today, candidate)
		if diff >= 0 && diff <= delta {
			out = append(out, p)
		}
	}
	return out
}

// WithReminders selects people whose Reminders field is exactly "TRUE".
// Used only to build the email BCC list.
func WithReminders(people []model.Person) []model.Person {
	out := make([]model.Person, 0)
	for _, p := range people {
		if p.WantsReminders() {
			out = append(out, p)
		}
	}
	return out
}

// nextOccurrence returns the first date with the given month/day on or
// after today, via a yearly recurrence rule. Feb 29 only recurs in leap
// years, which is the correct reading of such a birthday.
func nextOccurrence(month time.Month, day int, today time.Time) (time.Time, error) {
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:       rrule.YEARLY,
		Bymonth:    []int{int(month)},
		Bymonthday: []int{day},
		Dtstart:    today,
	})
	if err != nil {
		return time.Time{}, err
	}
	next := r.After(today, true)
	if next.IsZero() {
		return time.Time{}, errors.New("no occurrence on or after today")
	}
	// rrule operates in the Dtstart location; normalize back to midnight.
	return midnight(next.In(today.Location())), nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole days from a to b, both at midnight. Computed via
// date components rather than Sub so DST transitions cannot skew the count.
func daysBetween(a, b time.Time) int {
	days := 0
	step := 1
	if b.Before(a) {
		a, b = b, a
		step = -1
	}
	for !a.Equal(b) && days < 1000 {
		a = a.AddDate(0, 0, 1)
		days++
	}
	return days * step
}
