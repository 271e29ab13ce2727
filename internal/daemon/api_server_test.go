package daemon

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dirchurn/internal/api"
	"dirchurn/internal/logging"
	"dirchurn/internal/testsupport"
)

func newTestAPI(t *testing.T, token string, perMinute int) (*Daemon, *httptest.Server) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithAPI(token), testsupport.WithControlRate(perMinute))
	d, err := New(cfg, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	testsupport.WriteManagedFiles(t, cfg.Paths.MonitoredDir, 3)

	srv, err := newAPIServer(cfg, d, logging.NewNop())
	if err != nil || srv == nil {
		t.Fatalf("newAPIServer: %v", err)
	}
	ts := httptest.NewServer(srv.router)
	t.Cleanup(ts.Close)
	return d, ts
}

func doRequest(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAPIServerStatusAndFiles(t *testing.T) {
	_, ts := newTestAPI(t, "", 0)

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/status", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", resp.StatusCode)
	}
	var status api.DaemonStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Directory.State != "normal" || status.Directory.FileCount != 3 {
		t.Fatalf("unexpected directory status %+v", status.Directory)
	}
	if status.Producer.Name != "producer" || status.Consumer.IntervalMillis != 5000 {
		t.Fatalf("unexpected workers %+v / %+v", status.Producer, status.Consumer)
	}

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/files", "", nil)
	var files api.FileListResponse
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		t.Fatalf("decode files: %v", err)
	}
	if len(files.Files) != 3 || files.Files[0] != "file_0000.txt" {
		t.Fatalf("unexpected files %+v", files)
	}
}

func TestAPIServerControl(t *testing.T) {
	d, ts := newTestAPI(t, "", 0)

	resp := doRequest(t, http.MethodPost, ts.URL+"/api/control", "", api.ControlRequest{
		Command:        api.CommandSetDeletionInterval,
		IntervalMillis: 3000,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var ack api.AckResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if ack.Status != "ack" {
		t.Fatalf("unexpected ack %+v", ack)
	}
	if d.Status().Consumer.Interval.Milliseconds() != 3000 {
		t.Fatalf("interval not applied: %v", d.Status().Consumer.Interval)
	}

	resp = doRequest(t, http.MethodPost, ts.URL+"/api/control", "", api.ControlRequest{
		Command:        api.CommandSetCreationInterval,
		IntervalMillis: 50,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range interval, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodPost, ts.URL+"/api/control", "", map[string]string{"command": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing command, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/control", "", nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestAPIServerRequiresToken(t *testing.T) {
	_, ts := newTestAPI(t, "sekret", 0)

	if resp := doRequest(t, http.MethodGet, ts.URL+"/api/status", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
	if resp := doRequest(t, http.MethodGet, ts.URL+"/api/status", "wrong", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", resp.StatusCode)
	}
	if resp := doRequest(t, http.MethodGet, ts.URL+"/api/status", "sekret", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", resp.StatusCode)
	}
}

func TestAPIServerRateLimitsControl(t *testing.T) {
	_, ts := newTestAPI(t, "", 1)

	req := api.ControlRequest{Command: api.CommandStopCreating}
	if resp := doRequest(t, http.MethodPost, ts.URL+"/api/control", "", req); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected first control to pass, got %d", resp.StatusCode)
	}
	if resp := doRequest(t, http.MethodPost, ts.URL+"/api/control", "", req); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if resp := doRequest(t, http.MethodGet, ts.URL+"/api/status", "", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("status must not be rate limited, got %d", resp.StatusCode)
	}
}

func TestNewAPIServerDisabledWithoutBind(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	srv, err := newAPIServer(cfg, &Daemon{}, nil)
	if err != nil || srv != nil {
		t.Fatalf("expected disabled server, got %v %v", srv, err)
	}
	srv.stop()
}

func TestAPIServerJournalEndpoint(t *testing.T) {
	_, ts := newTestAPI(t, "", 0)

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/journal?limit=abc", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", resp.StatusCode)
	}
	resp = doRequest(t, http.MethodGet, ts.URL+"/api/journal", "", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without journal, got %d", resp.StatusCode)
	}
}
