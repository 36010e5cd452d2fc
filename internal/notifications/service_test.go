package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contactsync/internal/config"
	"contactsync/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventUpdateCompleted, notifications.Payload{"organization": "Acme"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).Publish(context.Background(), notifications.EventTest, nil); err != nil {
		t.Fatalf("expected nil config to yield noop, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "update completed",
			event: notifications.EventUpdateCompleted,
			payload: notifications.Payload{
				"organization": "Acme Capital",
				"matched":      3,
				"new":          1,
				"missing":      2,
			},
			expectTitle:   "contactsync - Updated",
			expectMessage: "Updated Acme Capital: 3 matched, 1 new, 2 missing",
			expectTags:    "contactsync,update,completed",
		},
		{
			name:  "clean completed",
			event: notifications.EventCleanCompleted,
			payload: notifications.Payload{
				"processed": 4,
				"failed":    0,
				"duration":  90 * time.Second,
			},
			expectTitle:   "contactsync - Clean Complete",
			expectMessage: "Cleaned 4 organizations in 1m30s",
			expectTags:    "contactsync,clean,completed",
		},
		{
			name:  "clean with failures",
			event: notifications.EventCleanCompleted,
			payload: notifications.Payload{
				"processed": 3,
				"failed":    1,
			},
			expectTitle:   "contactsync - Clean Complete (with errors)",
			expectMessage: "Clean finished: 3 succeeded, 1 failed in 0s",
			expectTags:    "contactsync,clean,completed",
		},
		{
			name:  "review pending",
			event: notifications.EventReviewPending,
			payload: notifications.Payload{
				"organization": "Acme Capital",
				"flagged":      2,
			},
			expectTitle:   "contactsync - Review Needed",
			expectMessage: "Acme Capital: 2 possible duplicate pair(s) flagged for review",
			expectTags:    "contactsync,review",
		},
		{
			name:  "error",
			event: notifications.EventError,
			payload: notifications.Payload{
				"organization": "Acme Capital",
				"operation":    "update",
				"error":        errors.New("extraction returned no candidates"),
			},
			expectTitle:    "contactsync - Error",
			expectMessage:  "Error during update for Acme Capital: extraction returned no candidates",
			expectTags:     "contactsync,error,alert",
			expectPriority: "high",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			expectTitle:    "contactsync - Test",
			expectMessage:  "Notification system test",
			expectTags:     "contactsync,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				captured.body = string(body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceIgnoresDisabledEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call for disabled event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Update = false
	cfg.Notifications.Review = false

	svc := notifications.NewService(&cfg)
	for _, event := range []notifications.Event{
		notifications.EventUpdateCompleted,
		notifications.EventReviewPending,
		notifications.Event("unknown"),
	} {
		if err := svc.Publish(context.Background(), event, notifications.Payload{"organization": "Acme"}); err != nil {
			t.Fatalf("expected no error for disabled event %s, got %v", event, err)
		}
	}
}

func TestNtfyServiceReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic not found", http.StatusNotFound)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	err := notifications.NewService(&cfg).Publish(context.Background(), notifications.EventTest, nil)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
}
