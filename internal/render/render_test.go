package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitschmensch/sundaydinner/internal/model"
)

const sheetURL = "https://docs.google.com/spreadsheets/d/abc/edit"

func sampleEvent() model.Event {
	return model.Event{Record: model.NewRecord(
		[]string{"Type", "Date", "Host Email", "Location", "Notes"},
		[]string{"Dinner", "01/03/2024", "host@example.com", "Main Hall", "bring drinks"},
	)}
}

func samplePeople() []model.Person {
	mk := func(name, bday string) model.Person {
		return model.Person{Record: model.NewRecord(
			[]string{"Full Name", "Email", "Birthday", "Reminders"},
			[]string{name, "x@example.com", bday, "TRUE"},
		)}
	}
	return []model.Person{mk("Ada Lovelace", "01/12/1815"), mk("Alan Turing", "01/23/1912")}
}

func TestEmailBodyListsEveryFieldInOrder(t *testing.T) {
	body, err := EmailBody(sampleEvent(), nil, sheetURL)
	require.NoError(t, err)

	// One table row per field, Type and Date included.
	assert.Equal(t, 5, strings.Count(body, "<tr>"))

	var last int
	for _, name := range []string{"Type", "Date", "Host Email", "Location", "Notes"} {
		i := strings.Index(body, "<strong>"+name+"</strong>")
		require.GreaterOrEqual(t, i, 0, name)
		assert.Greater(t, i, last, "field %s out of original column order", name)
		last = i
	}

	assert.Contains(t, body, "Main Hall")
	assert.Contains(t, body, sheetURL)
}

func TestEmailBodyBirthdaySection(t *testing.T) {
	without, err := EmailBody(sampleEvent(), nil, sheetURL)
	require.NoError(t, err)
	assert.NotContains(t, without, "<h2>Birthdays</h2>")

	with, err := EmailBody(sampleEvent(), samplePeople(), sheetURL)
	require.NoError(t, err)
	assert.Contains(t, with, "<h2>Birthdays</h2>")
	assert.Contains(t, with, "Ada Lovelace - 01/12/1815")
	assert.Contains(t, with, "Alan Turing - 01/23/1912")
}

func TestEmailBodyEscapesCellValues(t *testing.T) {
	ev := model.Event{Record: model.NewRecord(
		[]string{"Type", "Date", "Notes"},
		[]string{"Dinner", "01/03/2024", `<script>alert("x")</script>`},
	)}
	body, err := EmailBody(ev, nil, sheetURL)
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestEmailBodyRendersNullCellsEmpty(t *testing.T) {
	ev := model.Event{Record: model.NewRecord(
		[]string{"Type", "Date", "Location"},
		[]string{"Dinner", "01/03/2024"},
	)}
	body, err := EmailBody(ev, nil, sheetURL)
	require.NoError(t, err)
	assert.Contains(t, body, "<strong>Location</strong>")
	assert.NotContains(t, body, "nil")
}

func TestEmailBodyIsResponsive(t *testing.T) {
	body, err := EmailBody(sampleEvent(), nil, sheetURL)
	require.NoError(t, err)
	// The narrow-viewport collapse is a requirement, not decoration.
	assert.Contains(t, body, "@media screen and (max-width: 600px)")
}

func TestEmailSubject(t *testing.T) {
	assert.Equal(t, "Reminder: Dinner, 01/03/2024", EmailSubject(sampleEvent()))
}

func TestEventMessage(t *testing.T) {
	msg := EventMessage(sampleEvent(), sheetURL)

	assert.True(t, strings.HasPrefix(msg, "## **Upcoming Event!**\n\n"))
	assert.Contains(t, msg, "### **Dinner**: 01/03/2024\n")
	assert.Contains(t, msg, "> **Host Email**: host@example.com\n")
	assert.Contains(t, msg, "> **Location**: Main Hall\n")
	assert.Contains(t, msg, "> **Notes**: bring drinks\n")
	assert.Contains(t, msg, "[Visit the spreadsheet to make changes.]("+sheetURL+")")

	// Type and Date appear only in the header line, not as key: value rows.
	assert.NotContains(t, msg, "> **Type**")
	assert.NotContains(t, msg, "> **Date**")
}

func TestBirthdayMessage(t *testing.T) {
	msg := BirthdayMessage(samplePeople())

	assert.True(t, strings.HasPrefix(msg, "### **Birthdays!**\n\n"))
	assert.Contains(t, msg, "> - **Ada Lovelace**: 01/12/1815\n")
	assert.Contains(t, msg, "> - **Alan Turing**: 01/23/1912\n")
}
