package sheet

import (
	"github.com/kitschmensch/sundaydinner/internal/model"
)

// Normalize converts a raw grid into records by zipping the header row with
// each data row. Invariants:
//
//   - an empty table, or a table with only a header row, yields no records
//   - short rows are right-padded with nulls to the header length
//   - long rows are truncated to the header length (extra cells dropped)
//   - no row is ever dropped, even when every cell is absent
//
// Identical input always yields identical output; there is no hidden state.
func Normalize(t Table) []model.Record {
	if len(t) == 0 {
		return nil
	}
	headers := t[0]
	records := make([]model.Record, 0, len(t)-1)
	for _, row := range t[1:] {
		records = append(records, model.NewRecord(headers, row))
	}
	return records
}

// Events wraps normalized records from the events range.
func Events(t Table) []model.Event {
	recs := Normalize(t)
	out := make([]model.Event, 0, len(recs))
	for _, r := range recs {
		out = append(out, model.Event{Record: r})
	}
	return out
}

// People wraps normalized records from the members range.
func People(t Table) []model.Person {
	recs := Normalize(t)
	out := make([]model.Person, 0, len(recs))
	for _, r := range recs {
		out = append(out, model.Person{Record: r})
	}
	return out
}
