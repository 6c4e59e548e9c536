package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/kitschmensch/sundaydinner/internal/config"
	appLog "github.com/kitschmensch/sundaydinner/internal/log"
	"github.com/kitschmensch/sundaydinner/internal/notify"
	"github.com/kitschmensch/sundaydinner/internal/run"
	"github.com/kitschmensch/sundaydinner/internal/sheet"
)

// sundaydinner runs the reminder pipeline exactly once and exits. Recurring
// invocation belongs to cron or a systemd timer, not to this process.
func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./config.yaml", "Path to config file")
	flag.Parse()

	conf, err := config.Load(configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", configPath)
		os.Exit(1)
	}
	appLog.SetLevel(conf.LogLevel)

	appLog.Info("sundaydinner starting",
		"events_range", conf.EventsRange,
		"members_range", conf.MembersRange,
		"event_delta_days", conf.EventDeltaDays,
		"birthday_delta_days", conf.BirthdayDeltaDays,
		"birthday_roll_forward", conf.BirthdayRollForward,
		"webhook", notify.RedactURL(conf.WebhookURL),
	)

	// Cancel the in-flight network call on SIGINT/SIGTERM instead of dying
	// mid-dispatch.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner := run.New(conf,
		sheet.NewClient(conf.SpreadsheetID, conf.APIKey),
		notify.NewMailer(notify.SMTPConfig{
			Email:    conf.SMTP.Email,
			Password: conf.SMTP.Password,
			Server:   conf.SMTP.Server,
			Port:     conf.SMTP.Port,
		}),
		notify.NewPoster(conf.WebhookURL, conf.BotName, conf.AvatarURL, conf.WebhookRatePerSec),
	)

	if err := runner.Run(ctx); err != nil {
		appLog.Error("run failed", err)
		os.Exit(1)
	}

	appLog.Info("sundaydinner finished")
}
