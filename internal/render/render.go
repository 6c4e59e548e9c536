// Package render produces channel-specific notification payloads. All
// functions are pure: records in, text out, no I/O.
package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/kitschmensch/sundaydinner/internal/model"
)

// emailTemplate is the self-contained HTML document sent as the email body.
// The @media rule collapses the two-column event table to a single column on
// narrow viewports; mail clients that honor embedded styles keep the layout
// readable on phones.
const emailTemplate = `<!DOCTYPE html>
<html>
<head>
<style>
.container {
    width: 100%;
    max-width: 600px;
    margin: auto;
    font-family: Arial, sans-serif;
}
.event-table {
    width: 100%;
    border-collapse: collapse;
}
.event-table td {
    border: 1px solid #ddd;
    padding: 8px;
}
@media screen and (max-width: 600px) {
    .event-table, .event-table tr, .event-table td {
        display: block;
        width: 100%;
    }
}
</style>
</head>
<body>
<div class="container">
    <h1>Upcoming Event!</h1>
    <p><i>To optionally RSVP, reply to this email to send a message to the host.</i></p>
    <table class="event-table">
        <tbody>
{{- range .Fields}}
            <tr>
                <td><strong>{{.Name}}</strong></td>
                <td>{{.Display}}</td>
            </tr>
{{- end}}
        </tbody>
    </table>
{{- if .Birthdays}}
    <h2>Birthdays</h2>
{{- range .Birthdays}}
    <p>{{.Name}} - {{.Birthday}}</p>
{{- end}}
{{- end}}
    <p><a href="{{.SheetURL}}">Visit the spreadsheet to make changes.</a></p>
</div>
</body>
</html>
`

var emailTmpl = template.Must(template.New("email").Parse(emailTemplate))

type emailField struct {
	Name    string
	Display string
}

type emailBirthday struct {
	Name     string
	Birthday string
}

type emailData struct {
	Fields    []emailField
	Birthdays []emailBirthday
	SheetURL  string
}

// EmailBody renders the HTML email for one event. Every field of the event
// appears as a table row in original column order, Type and Date included;
// null cells render as empty. The birthdays section is present iff birthdays
// is non-empty.
func EmailBody(event model.Event, birthdays []model.Person, sheetURL string) (string, error) {
	data := emailData{SheetURL: sheetURL}
	for _, f := range event.Fields() {
		display := ""
		if f.Value != nil {
			display = *f.Value
		}
		data.Fields = append(data.Fields, emailField{Name: f.Name, Display: display})
	}
	for _, p := range birthdays {
		name, _ := p.FullName()
		bday, _ := p.Birthday()
		data.Birthdays = append(data.Birthdays, emailBirthday{Name: name, Birthday: bday})
	}

	var b strings.Builder
	if err := emailTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render: email body: %w", err)
	}
	return b.String(), nil
}

// EmailSubject formats the reminder subject line for one event.
func EmailSubject(event model.Event) string {
	typ, _ := event.Type()
	date, _ := event.Date()
	return fmt.Sprintf("Reminder: %s, %s", typ, date)
}

// EventMessage renders the compact markdown channel post for one event:
// header, Type/Date line, one quoted "key: value" line per remaining field
// in column order, and the spreadsheet link.
func EventMessage(event model.Event, sheetURL string) string {
	typ, _ := event.Type()
	date, _ := event.Date()

	var b strings.Builder
	b.WriteString("## **Upcoming Event!**\n\n")
	fmt.Fprintf(&b, "### **%s**: %s\n", typ, date)
	for _, f := range event.Fields() {
		if f.Name == "Type" || f.Name == "Date" {
			continue
		}
		value := ""
		if f.Value != nil {
			value = *f.Value
		}
		fmt.Fprintf(&b, "> **%s**: %s\n", f.Name, value)
	}
	fmt.Fprintf(&b, "\n[Visit the spreadsheet to make changes.](%s)\n", sheetURL)
	return b.String()
}

// BirthdayMessage renders the single channel post listing upcoming
// birthdays.
func BirthdayMessage(birthdays []model.Person) string {
	var b strings.Builder
	b.WriteString("### **Birthdays!**\n\n")
	for _, p := range birthdays {
		name, _ := p.FullName()
		bday, _ := p.Birthday()
		fmt.Fprintf(&b, "> - **%s**: %s\n", name, bday)
	}
	return b.String()
}
