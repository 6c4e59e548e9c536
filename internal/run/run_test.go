package run

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitschmensch/sundaydinner/internal/config"
	"github.com/kitschmensch/sundaydinner/internal/sheet"
)

type fakeSource struct {
	tables map[string]sheet.Table
	errs   map[string]error
}

func (f *fakeSource) FetchRange(_ context.Context, name string) (sheet.Table, error) {
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	return f.tables[name], nil
}

type sentMail struct {
	subject string
	body    string
	bcc     []string
	replyTo string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, subject, htmlBody string, bcc []string, replyTo string) error {
	f.sent = append(f.sent, sentMail{subject: subject, body: htmlBody, bcc: bcc, replyTo: replyTo})
	return f.err
}

type fakePoster struct {
	posts []string
	err   error
}

func (f *fakePoster) Post(_ context.Context, content string) error {
	f.posts = append(f.posts, content)
	return f.err
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.SpreadsheetID = "sheet-1"
	cfg.Normalize()
	return cfg
}

func newTestRunner(src *fakeSource, mailer *fakeMailer, poster *fakePoster) *Runner {
	r := New(testConfig(), src, mailer, poster)
	r.now = func() time.Time {
		return time.Date(2024, time.January, 1, 9, 30, 0, 0, time.UTC)
	}
	return r
}

// eventsTable has one event inside the 2-day window and one outside it.
func eventsTable() sheet.Table {
	return sheet.Table{
		{"Type", "Date", "Host Email", "Location"},
		{"Dinner", "01/03/2024", "host@example.com", "Main Hall"},
		{"Brunch", "01/09/2024", "other@example.com", "Cafe"},
	}
}

func membersTable() sheet.Table {
	return sheet.Table{
		{"Full Name", "Email", "Birthday", "Reminders"},
		{"Ada Lovelace", "ada@example.com", "", "TRUE"},
		{"Alan Turing", "alan@example.com", "", "FALSE"},
	}
}

func TestRunEndToEnd(t *testing.T) {
	src := &fakeSource{tables: map[string]sheet.Table{
		"Events!A:Z":  eventsTable(),
		"Members!A:Z": membersTable(),
	}}
	mailer := &fakeMailer{}
	poster := &fakePoster{}

	err := newTestRunner(src, mailer, poster).Run(context.Background())
	require.NoError(t, err)

	// Exactly one email: for the matching event, BCC'd to the single
	// opted-in member, replies routed to the host.
	require.Len(t, mailer.sent, 1)
	m := mailer.sent[0]
	assert.Equal(t, "Reminder: Dinner, 01/03/2024", m.subject)
	assert.Equal(t, []string{"ada@example.com"}, m.bcc)
	assert.Equal(t, "host@example.com", m.replyTo)
	assert.Contains(t, m.body, "Main Hall")

	// Exactly one channel post (no birthdays, so no birthdays post).
	require.Len(t, poster.posts, 1)
	assert.Contains(t, poster.posts[0], "### **Dinner**: 01/03/2024")
	assert.NotContains(t, poster.posts[0], "Brunch")
}

func TestRunPostsBirthdaysOnceAfterEvents(t *testing.T) {
	members := sheet.Table{
		{"Full Name", "Email", "Birthday", "Reminders"},
		{"Ada Lovelace", "ada@example.com", "01/10/1815", "TRUE"},
		{"Alan Turing", "alan@example.com", "06/23/1912", "TRUE"},
	}
	src := &fakeSource{tables: map[string]sheet.Table{
		"Events!A:Z":  eventsTable(),
		"Members!A:Z": members,
	}}
	mailer := &fakeMailer{}
	poster := &fakePoster{}

	err := newTestRunner(src, mailer, poster).Run(context.Background())
	require.NoError(t, err)

	// Event post first, then the single birthdays post.
	require.Len(t, poster.posts, 2)
	assert.Contains(t, poster.posts[0], "Upcoming Event!")
	assert.True(t, strings.HasPrefix(poster.posts[1], "### **Birthdays!**"))
	assert.Contains(t, poster.posts[1], "Ada Lovelace")
	assert.NotContains(t, poster.posts[1], "Alan Turing")

	// The email carries the birthdays section too.
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].body, "<h2>Birthdays</h2>")
}

func TestRunEmailFailureDoesNotBlockChannelOrLaterEvents(t *testing.T) {
	events := sheet.Table{
		{"Type", "Date", "Host Email"},
		{"Dinner", "01/03/2024", "host-a@example.com"},
		{"Game Night", "01/03/2024", "host-b@example.com"},
	}
	src := &fakeSource{tables: map[string]sheet.Table{
		"Events!A:Z":  events,
		"Members!A:Z": membersTable(),
	}}
	mailer := &fakeMailer{err: errors.New("smtp: auth failed")}
	poster := &fakePoster{}

	err := newTestRunner(src, mailer, poster).Run(context.Background())
	require.NoError(t, err)

	// Both emails were attempted, both failed, and both channel posts still
	// went out.
	assert.Len(t, mailer.sent, 2)
	require.Len(t, poster.posts, 2)
	assert.Contains(t, poster.posts[0], "Dinner")
	assert.Contains(t, poster.posts[1], "Game Night")
}

func TestRunPosterFailureDoesNotBlockEmail(t *testing.T) {
	src := &fakeSource{tables: map[string]sheet.Table{
		"Events!A:Z":  eventsTable(),
		"Members!A:Z": membersTable(),
	}}
	mailer := &fakeMailer{}
	poster := &fakePoster{err: errors.New("status 404")}

	err := newTestRunner(src, mailer, poster).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, mailer.sent, 1)
}

func TestRunFetchFailureDegradesToEmpty(t *testing.T) {
	src := &fakeSource{
		tables: map[string]sheet.Table{"Members!A:Z": membersTable()},
		errs:   map[string]error{"Events!A:Z": errors.New("403 Forbidden")},
	}
	mailer := &fakeMailer{}
	poster := &fakePoster{}

	err := newTestRunner(src, mailer, poster).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
	assert.Empty(t, poster.posts)
}

func TestRunSkipsEventMissingRequiredFields(t *testing.T) {
	events := sheet.Table{
		{"Type", "Date", "Host Email"},
		{"Dinner"}, // no Date: cannot be selected or rendered
	}
	src := &fakeSource{tables: map[string]sheet.Table{
		"Events!A:Z":  events,
		"Members!A:Z": membersTable(),
	}}
	mailer := &fakeMailer{}
	poster := &fakePoster{}

	err := newTestRunner(src, mailer, poster).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
	assert.Empty(t, poster.posts)
}

func TestRunNoRecipientsSkipsEmailButStillPosts(t *testing.T) {
	members := sheet.Table{
		{"Full Name", "Email", "Birthday", "Reminders"},
		{"Alan Turing", "alan@example.com", "", "FALSE"},
	}
	src := &fakeSource{tables: map[string]sheet.Table{
		"Events!A:Z":  eventsTable(),
		"Members!A:Z": members,
	}}
	mailer := &fakeMailer{}
	poster := &fakePoster{}

	err := newTestRunner(src, mailer, poster).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
	assert.Len(t, poster.posts, 1)
}

func TestRunNoBirthdayPostWithoutEvents(t *testing.T) {
	members := sheet.Table{
		{"Full Name", "Email", "Birthday", "Reminders"},
		{"Ada Lovelace", "ada@example.com", "01/10/1815", "TRUE"},
	}
	src := &fakeSource{tables: map[string]sheet.Table{
		"Events!A:Z":  {{"Type", "Date", "Host Email"}},
		"Members!A:Z": members,
	}}
	mailer := &fakeMailer{}
	poster := &fakePoster{}

	err := newTestRunner(src, mailer, poster).Run(context.Background())
	require.NoError(t, err)
	// Birthdays alone do not trigger a post; they ride along with events.
	assert.Empty(t, poster.posts)
}
