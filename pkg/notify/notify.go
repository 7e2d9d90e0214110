package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Announcement describes one newly discovered submission.
type Announcement struct {
	GUID       string `json:"guid"`
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
	URL        string `json:"url"`
}

// Notifier delivers announcements to a specific destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, a *Announcement) error
}

// Manager broadcasts announcements to all registered notifiers.
type Manager struct {
	notifiers []Notifier
}

// NewManager creates a new notification manager.
func NewManager(notifiers []Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// HasNotifiers returns true if at least one notifier is configured.
func (m *Manager) HasNotifiers() bool {
	return m != nil && len(m.notifiers) > 0
}

// Broadcast sends an announcement to all registered notifiers.
func (m *Manager) Broadcast(ctx context.Context, a *Announcement) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, a); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Discord announces new submissions via a Discord webhook.
type Discord struct {
	client     *http.Client
	webhookURL string
}

// NewDiscord creates a new Discord notifier.
func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		client:     &http.Client{Timeout: 10 * time.Second},
		webhookURL: webhookURL,
	}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Send(ctx context.Context, a *Announcement) error {
	embed := map[string]any{
		"title":       fmt.Sprintf("New submission: %s", a.Title),
		"description": fmt.Sprintf("by %s\n%s", a.AuthorName, a.URL),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}
	payload := map[string]any{
		"embeds": []map[string]any{embed},
	}
	return post(ctx, d.client, d.webhookURL, "discord", payload)
}

// Webhook announces new submissions to a generic HTTP endpoint.
type Webhook struct {
	client *http.Client
	url    string
}

// NewWebhook creates a new generic webhook notifier.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    url,
	}
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) Send(ctx context.Context, a *Announcement) error {
	return post(ctx, w.client, w.url, "webhook", a)
}

func post(ctx context.Context, client *http.Client, url, name string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s status %d", name, resp.StatusCode)
	}
	return nil
}
