package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"dirchurn/internal/config"
)

const userAgent = "dirchurn/0.1"

// Event names a notification type.
type Event string

const (
	EventDirectoryEmpty      Event = "directory_empty"
	EventDirectoryOverloaded Event = "directory_overloaded"
	EventDirectoryRecovered  Event = "directory_recovered"
	EventTest                Event = "test"
)

// Payload carries event fields. Keys used: dir, count, previous.
type Payload map[string]string

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: cfg.Notifications.RequestTimeout()},
		enabled: map[Event]bool{
			EventDirectoryEmpty:      cfg.Notifications.OnEmpty,
			EventDirectoryOverloaded: cfg.Notifications.OnOverloaded,
			EventDirectoryRecovered:  cfg.Notifications.OnEmpty || cfg.Notifications.OnOverloaded,
			EventTest:                true,
		},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  map[Event]bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if !n.enabled[event] {
		return nil
	}
	msg, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func format(event Event, payload Payload) (message, bool) {
	dir := strings.TrimSpace(payload["dir"])
	count := strings.TrimSpace(payload["count"])
	switch event {
	case EventDirectoryEmpty:
		return message{
			title: "dirchurn - Directory Empty",
			body:  fmt.Sprintf("🟥 %s is empty", dir),
			tags:  []string{"dirchurn", "directory", "empty"},
		}, true
	case EventDirectoryOverloaded:
		return message{
			title:    "dirchurn - Directory Overloaded",
			body:     fmt.Sprintf("🟧 %s holds %s files", dir, count),
			tags:     []string{"dirchurn", "directory", "overloaded"},
			priority: "high",
		}, true
	case EventDirectoryRecovered:
		return message{
			title: "dirchurn - Directory Normal",
			body:  fmt.Sprintf("🟩 %s back to normal (%s files, was %s)", dir, count, payload["previous"]),
			tags:  []string{"dirchurn", "directory", "normal"},
		}, true
	case EventTest:
		return message{
			title:    "dirchurn - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"dirchurn", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
