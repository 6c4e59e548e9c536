// Package run composes the pipeline: fetch both ranges, normalize, filter,
// render, dispatch. One Run per process invocation; nothing is carried over
// between runs.
package run

import (
	"context"
	"time"

	"github.com/kitschmensch/sundaydinner/internal/config"
	appLog "github.com/kitschmensch/sundaydinner/internal/log"
	"github.com/kitschmensch/sundaydinner/internal/model"
	"github.com/kitschmensch/sundaydinner/internal/render"
	"github.com/kitschmensch/sundaydinner/internal/sheet"
	"github.com/kitschmensch/sundaydinner/internal/window"
)

// Source fetches a named range from the tabular data source. The pipeline
// depends only on this contract; transport and auth live behind it.
type Source interface {
	FetchRange(ctx context.Context, rangeName string) (sheet.Table, error)
}

// EmailSender delivers one rendered email.
type EmailSender interface {
	Send(ctx context.Context, subject, htmlBody string, bcc []string, replyTo string) error
}

// ChannelPoster delivers one rendered channel message.
type ChannelPoster interface {
	Post(ctx context.Context, content string) error
}

// Runner orchestrates a single best-effort run.
type Runner struct {
	cfg    *config.Config
	source Source
	mailer EmailSender
	poster ChannelPoster

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// New wires a Runner from its collaborators.
func New(cfg *config.Config, source Source, mailer EmailSender, poster ChannelPoster) *Runner {
	return &Runner{
		cfg:    cfg,
		source: source,
		mailer: mailer,
		poster: poster,
		now:    time.Now,
	}
}

// Run executes the pipeline once. Partial failures (an unreachable range, a
// rejected email, a non-204 webhook response) are logged and stepped over,
// never fatal: each event and each channel is handled independently.
func (r *Runner) Run(ctx context.Context) error {
	today := r.now()

	events := sheet.Events(r.fetchTable(ctx, r.cfg.EventsRange))
	members := sheet.People(r.fetchTable(ctx, r.cfg.MembersRange))

	upcoming := window.UpcomingEvents(events, r.cfg.EventDeltaDays, today)
	birthdays := window.UpcomingBirthdays(members, r.cfg.BirthdayDeltaDays, today, r.cfg.BirthdayRollForward)
	optedIn := window.WithReminders(members)
	recipients := emailAddresses(optedIn)

	appLog.Info("run selection complete",
		"events", len(upcoming),
		"members_with_reminders", len(optedIn),
		"birthdays", len(birthdays),
	)

	for _, ev := range upcoming {
		if !ev.Valid() {
			appLog.Warn("skipping event with missing required fields")
			continue
		}
		r.notifyEvent(ctx, ev, birthdays, recipients)
	}

	if len(upcoming) > 0 && len(birthdays) > 0 {
		if err := r.poster.Post(ctx, render.BirthdayMessage(birthdays)); err != nil {
			appLog.Error("birthday channel post failed", err)
		}
	}

	return nil
}

// notifyEvent sends the email and the channel post for one event. The two
// channels are independent: an email failure still posts to the channel, and
// neither failure touches later events.
func (r *Runner) notifyEvent(ctx context.Context, ev model.Event, birthdays []model.Person, recipients []string) {
	subject := render.EmailSubject(ev)

	if len(recipients) == 0 {
		appLog.Info("no opted-in recipients; skipping email", "subject", subject)
	} else if body, err := render.EmailBody(ev, birthdays, r.cfg.SpreadsheetURL); err != nil {
		appLog.Warn("skipping email for unrenderable event", "subject", subject, "err", err.Error())
	} else {
		host, _ := ev.HostEmail()
		if err := r.mailer.Send(ctx, subject, body, recipients, host); err != nil {
			appLog.Error("email send failed", err, "subject", subject)
		}
	}

	if err := r.poster.Post(ctx, render.EventMessage(ev, r.cfg.SpreadsheetURL)); err != nil {
		appLog.Error("event channel post failed", err, "subject", subject)
	}
}

// fetchTable fetches one range, degrading to an empty table on failure so
// the rest of the run proceeds with whatever data is available.
func (r *Runner) fetchTable(ctx context.Context, rangeName string) sheet.Table {
	tbl, err := r.source.FetchRange(ctx, rangeName)
	if err != nil {
		appLog.Error("range fetch failed; continuing with empty table", err, "range", rangeName)
		return nil
	}
	return tbl
}

// emailAddresses extracts the non-empty addresses of the given people.
func emailAddresses(people []model.Person) []string {
	out := make([]string, 0, len(people))
	for _, p := range people {
		if addr, ok := p.Email(); ok && addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
