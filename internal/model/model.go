package model

// DateLayout is the date format used throughout the spreadsheet:
// zero-padded MM/DD/YYYY.
const DateLayout = "01/02/2006"

// Field is one named cell of a record. Value is nil when the source row had
// no cell for this column.
type Field struct {
	Name  string
	Value *string
}

// Record is a normalized view of one spreadsheet data row: field name →
// nullable cell value, preserving the column order of the source table.
// Records are built once by the normalizer and never mutated afterwards.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord builds a record by zipping header names with cells. Rows shorter
// than the header are padded with nulls; longer rows are truncated to the
// header length. Header names are assumed unique within a table; on a
// duplicate the last column wins for lookups while both stay in field order.
func NewRecord(headers []string, cells []string) Record {
	r := Record{
		fields: make([]Field, 0, len(headers)),
		index:  make(map[string]int, len(headers)),
	}
	for i, name := range headers {
		var v *string
		if i < len(cells) {
			c := cells[i]
			v = &c
		}
		r.fields = append(r.fields, Field{Name: name, Value: v})
		r.index[name] = i
	}
	return r
}

// Len returns the number of fields (always the header length).
func (r Record) Len() int { return len(r.fields) }

// Fields returns the fields in original column order. The returned slice
// must not be modified.
func (r Record) Fields() []Field { return r.fields }

// Get returns the value of the named field. ok is false when the field does
// not exist or its value is null.
func (r Record) Get(name string) (value string, ok bool) {
	i, exists := r.index[name]
	if !exists || r.fields[i].Value == nil {
		return "", false
	}
	return *r.fields[i].Value, true
}

// Lookup distinguishes a missing field from a null one: found is false only
// when the column does not exist; a null cell yields (nil, true).
func (r Record) Lookup(name string) (value *string, found bool) {
	i, exists := r.index[name]
	if !exists {
		return nil, false
	}
	return r.fields[i].Value, true
}

// Event is a record from the events range. Required fields: Type, Date
// (MM/DD/YYYY), Host Email. Any further columns are carried through opaquely
// and shown in notifications in column order.
type Event struct {
	Record
}

func (e Event) Type() (string, bool)      { return e.Get("Type") }
func (e Event) Date() (string, bool)      { return e.Get("Date") }
func (e Event) HostEmail() (string, bool) { return e.Get("Host Email") }

// Valid reports whether the event carries the fields every notification
// needs. Invalid events are skipped by the orchestrator, not fatal.
func (e Event) Valid() bool {
	if _, ok := e.Type(); !ok {
		return false
	}
	if _, ok := e.Date(); !ok {
		return false
	}
	return true
}

// Person is a record from the members range. Birthday may be empty; the year
// component is ignored for matching. Reminders is the literal string "TRUE"
// for members opted into email reminders.
type Person struct {
	Record
}

func (p Person) FullName() (string, bool) { return p.Get("Full Name") }
func (p Person) Email() (string, bool)    { return p.Get("Email") }
func (p Person) Birthday() (string, bool) { return p.Get("Birthday") }

// WantsReminders is an exact, case-sensitive match on "TRUE"; "true", "1",
// empty and null all mean no.
func (p Person) WantsReminders() bool {
	v, ok := p.Get("Reminders")
	return ok && v == "TRUE"
}
