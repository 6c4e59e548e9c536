package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	appLog "github.com/kitschmensch/sundaydinner/internal/log"
)

// payload is the JSON body a Discord-compatible webhook expects.
type payload struct {
	Content   string `json:"content"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Poster posts markdown messages to a chat webhook. Posts are rate limited
// because Discord throttles webhook bursts and a run can emit several posts
// back to back (one per event plus the birthdays message).
type Poster struct {
	http      *http.Client
	limiter   *rate.Limiter
	url       string
	username  string
	avatarURL string
}

const webhookTimeout = 10 * time.Second

// NewPoster creates a Poster. ratePerSec <= 0 falls back to 1 post/second.
func NewPoster(webhookURL, username, avatarURL string, ratePerSec int) *Poster {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	return &Poster{
		http:      &http.Client{Timeout: webhookTimeout},
		limiter:   rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		url:       webhookURL,
		username:  username,
		avatarURL: avatarURL,
	}
}

// Post sends one message. Success is exactly HTTP 204; any other status is
// returned as an error carrying the status and (truncated) response body so
// the caller can log it. Failures are non-fatal by contract.
func (p *Poster) Post(ctx context.Context, content string) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notify: webhook rate wait: %w", err)
	}

	body, err := json.Marshal(payload{
		Content:   content,
		Username:  p.username,
		AvatarURL: p.avatarURL,
	})
	if err != nil {
		return fmt.Errorf("notify: webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("notify: webhook post to %s: %w", RedactURL(p.url), err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusNoContent {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notify: webhook post to %s: status %d: %s",
			RedactURL(p.url), resp.StatusCode, string(detail))
	}

	appLog.Info("channel post sent", "url", RedactURL(p.url), "bytes", len(content))
	return nil
}

// RedactURL strips the path and query from a URL for logging. Discord
// webhook URLs embed their token in the path, so only the host survives.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "webhook://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
