package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"contactsync/internal/config"
)

const userAgent = "contactsync/0.1.0"

// Event names a pipeline milestone.
type Event string

const (
	EventUpdateCompleted Event = "update_completed"
	EventCleanCompleted  Event = "clean_completed"
	EventReviewPending   Event = "review_pending"
	EventError           Event = "error"
	EventTest            Event = "test"
)

// Payload carries event fields. Keys are event specific.
type Payload map[string]any

// Service publishes pipeline events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled:  cfg.Notifications,
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
	enabled  config.Notifications
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if n == nil || !n.allows(event) {
		return nil
	}
	msg, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) allows(event Event) bool {
	switch event {
	case EventUpdateCompleted:
		return n.enabled.Update
	case EventCleanCompleted:
		return n.enabled.Clean
	case EventReviewPending:
		return n.enabled.Review
	case EventError:
		return n.enabled.Errors
	case EventTest:
		return true
	default:
		return false
	}
}

func format(event Event, payload Payload) (message, bool) {
	org := payload.text("organization")
	switch event {
	case EventUpdateCompleted:
		return message{
			title: "contactsync - Updated",
			body: fmt.Sprintf("Updated %s: %d matched, %d new, %d missing",
				org, payload.number("matched"), payload.number("new"), payload.number("missing")),
			tags: []string{"contactsync", "update", "completed"},
		}, true
	case EventCleanCompleted:
		processed, failed := payload.number("processed"), payload.number("failed")
		duration := payload.duration("duration")
		if failed == 0 {
			return message{
				title: "contactsync - Clean Complete",
				body:  fmt.Sprintf("Cleaned %d organizations in %s", processed, duration),
				tags:  []string{"contactsync", "clean", "completed"},
			}, true
		}
		return message{
			title: "contactsync - Clean Complete (with errors)",
			body:  fmt.Sprintf("Clean finished: %d succeeded, %d failed in %s", processed, failed, duration),
			tags:  []string{"contactsync", "clean", "completed"},
		}, true
	case EventReviewPending:
		return message{
			title: "contactsync - Review Needed",
			body:  fmt.Sprintf("%s: %d possible duplicate pair(s) flagged for review", org, payload.number("flagged")),
			tags:  []string{"contactsync", "review"},
		}, true
	case EventError:
		var builder strings.Builder
		builder.WriteString("Error")
		if op := payload.text("operation"); op != "" {
			builder.WriteString(" during ")
			builder.WriteString(op)
		}
		if org != "" {
			builder.WriteString(" for ")
			builder.WriteString(org)
		}
		builder.WriteString(": ")
		if errText := payload.text("error"); errText != "" {
			builder.WriteString(errText)
		} else {
			builder.WriteString("unknown")
		}
		return message{
			title:    "contactsync - Error",
			body:     builder.String(),
			tags:     []string{"contactsync", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "contactsync - Test",
			body:     "Notification system test",
			tags:     []string{"contactsync", "test"},
			priority: "low",
		}, true
	}
	return message{}, false
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n.client == nil {
		return nil
	}

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
	if msg.priority != "" && msg.priority != "default" {
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

func (p Payload) text(key string) string {
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (p Payload) number(key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	default:
		return 0
	}
}

func (p Payload) duration(key string) string {
	d, _ := p[key].(time.Duration)
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
