package daemon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"dirchurn/internal/logging"
	"dirchurn/internal/testsupport"
)

func TestStateTransitionsPublishNotifications(t *testing.T) {
	var mu sync.Mutex
	var titles []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		titles = append(titles, r.Header.Get("Title"))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	d, err := New(cfg, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	seen := func(title string) func() bool {
		return func() bool {
			mu.Lock()
			defer mu.Unlock()
			for _, got := range titles {
				if got == title {
					return true
				}
			}
			return false
		}
	}

	testsupport.WriteManagedFiles(t, d.Dir(), 25)
	testsupport.Eventually(t, 5*time.Second, seen("dirchurn - Directory Overloaded"),
		"expected overloaded notification")

	if _, err := d.EmptyFolder(); err != nil {
		t.Fatalf("EmptyFolder: %v", err)
	}
	testsupport.Eventually(t, 5*time.Second, seen("dirchurn - Directory Empty"),
		"expected empty notification")
}

func TestInitialSnapshotDoesNotNotify(t *testing.T) {
	calls := make(chan struct{}, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls <- struct{}{}
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	d, err := New(cfg, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	_ = d.Close()

	select {
	case <-calls:
		t.Fatal("initial classification must not notify")
	case <-time.After(200 * time.Millisecond):
	}
}
