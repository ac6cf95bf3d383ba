package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/contactform/internal/contact"
	"github.com/vango-dev/contactform/internal/errors"
	"github.com/vango-dev/contactform/pkg/middleware"
	"github.com/vango-dev/contactform/pkg/session"
)

const testCookie = "contactform_session"

type testEnv struct {
	srv   *Server
	ts    *httptest.Server
	store *session.MemoryStore
	reg   *prometheus.Registry
}

func newTestEnv(t *testing.T, mutate ...func(*ServerConfig)) *testEnv {
	t.Helper()
	cfg := DefaultServerConfig()
	cfg.PingInterval = time.Second
	for _, m := range mutate {
		m(cfg)
	}

	store := session.NewMemoryStore(session.WithCleanupInterval(time.Hour))
	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(middleware.WithRegistry(reg))
	srv := New(cfg,
		WithStore(store),
		WithMetrics(metrics, reg),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = store.Close()
	})
	return &testEnv{srv: srv, ts: ts, store: store, reg: reg}
}

func (e *testEnv) get(t *testing.T, path, sessionID string) (*http.Response, string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, e.ts.URL+path, nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: sessionID})
	}
	return do(t, req)
}

func (e *testEnv) post(t *testing.T, values url.Values) (*http.Response, string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPost, e.ts.URL+"/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(t, req)
}

func do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestPageRendersForm(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Contact Form</title>",
		"<h1>Contact Form</h1>",
		`<label for="firstName">First Name*</label>`,
		`/live`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, `data-testid="error"`) {
		t.Error("fresh page shows errors")
	}

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == testCookie {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" || !cookie.HttpOnly {
		t.Errorf("session cookie = %+v", cookie)
	}

	resp, _ = env.get(t, "/", "known")
	if len(resp.Cookies()) != 0 {
		t.Error("cookie reissued for a known session")
	}
}

func TestPageWithoutLiveChannel(t *testing.T) {
	env := newTestEnv(t, func(c *ServerConfig) { c.LivePath = "" })

	_, body := env.get(t, "/", "")
	if strings.Contains(body, "<script>") {
		t.Error("client script injected without a live path")
	}
	resp, _ := env.get(t, "/live", "")
	if resp.StatusCode != http.StatusNotFound && resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("/live status = %d, want 404", resp.StatusCode)
	}
}

func TestSubmitRejected(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.post(t, url.Values{})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	if n := strings.Count(body, `data-testid="error"`); n != 3 {
		t.Errorf("errors = %d, want 3", n)
	}
	if strings.Contains(body, "firstnameDisplay") {
		t.Error("rejected submit shows a display")
	}

	_, metrics := env.get(t, "/metrics", "")
	if !strings.Contains(metrics, `contactform_submissions_total{result="rejected"} 1`) {
		t.Errorf("/metrics missing rejected submission:\n%s", metrics)
	}
}

func TestSubmitAccepted(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.post(t, url.Values{
		"firstName": {"scout"},
		"lastName":  {"reilly"},
		"email":     {"test@test.com"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	for _, want := range []string{
		`data-testid="firstnameDisplay">First Name: scout`,
		`data-testid="lastnameDisplay">Last Name: reilly`,
		`data-testid="emailDisplay">Email: test@test.com`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, "messageDisplay") {
		t.Error("messageDisplay shown without a message")
	}
}

func TestSubmitAllFieldsEscapes(t *testing.T) {
	env := newTestEnv(t)

	_, body := env.post(t, url.Values{
		"firstName": {"scout"},
		"lastName":  {"reilly"},
		"email":     {"test@test.com"},
		"message":   {"<b>hi</b>"},
	})
	if !strings.Contains(body, `data-testid="messageDisplay">Message: &lt;b&gt;hi&lt;/b&gt;`) {
		t.Errorf("message not displayed escaped:\n%s", body)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var health struct {
		Status string `json:"status"`
		Live   int    `json:"live"`
	}
	if err := json.Unmarshal([]byte(body), &health); err != nil {
		t.Fatalf("healthz body %q: %v", body, err)
	}
	if health.Status != "ok" || health.Live != 0 {
		t.Errorf("health = %+v", health)
	}
}

// liveClient is a test client for the live channel.
type liveClient struct {
	t    *testing.T
	conn *websocket.Conn
	html string
}

func (e *testEnv) dial(t *testing.T, sessionID string) *liveClient {
	t.Helper()
	u := "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/live"
	header := http.Header{}
	if sessionID != "" {
		header.Set("Cookie", testCookie+"="+sessionID)
	}
	conn, _, err := websocket.DefaultDialer.Dial(u, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	c := &liveClient{t: t, conn: conn}
	if msg := c.read(); msg.Type != "render" {
		t.Fatalf("first message = %+v, want render", msg)
	}
	return c
}

func (c *liveClient) read() LiveMessage {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg LiveMessage
	if err := c.conn.ReadJSON(&msg); err != nil {
		c.t.Fatalf("read: %v", err)
	}
	if msg.Type == "render" {
		c.html = msg.HTML
	}
	return msg
}

func (c *liveClient) send(ev LiveEvent) LiveMessage {
	c.t.Helper()
	if err := c.conn.WriteJSON(ev); err != nil {
		c.t.Fatalf("write: %v", err)
	}
	return c.read()
}

// hid finds the hydration id of the element whose opening tag matches.
func (c *liveClient) hid(tagPattern string) string {
	c.t.Helper()
	re := regexp.MustCompile(tagPattern + `[^>]*data-hid="(h\d+)"`)
	m := re.FindStringSubmatch(c.html)
	if m == nil {
		c.t.Fatalf("no hid for %s in:\n%s", tagPattern, c.html)
	}
	return m[1]
}

func (c *liveClient) input(id, value string) LiveMessage {
	c.t.Helper()
	return c.send(LiveEvent{HID: c.hid(`<(?:input|textarea)[^>]*id="` + id + `"`), Event: "input", Value: value})
}

func (c *liveClient) submit() LiveMessage {
	c.t.Helper()
	return c.send(LiveEvent{HID: c.hid(`<form`), Event: "submit"})
}

func TestLiveTyping(t *testing.T) {
	env := newTestEnv(t)
	c := env.dial(t, "s1")

	msg := c.input(contact.FieldFirstName, "name")
	if msg.Type != "render" {
		t.Fatalf("reply = %+v", msg)
	}
	if !strings.Contains(msg.HTML, "Error: firstName must have at least 5 characters.") {
		t.Errorf("missing firstName error:\n%s", msg.HTML)
	}
	if n := strings.Count(msg.HTML, `data-testid="error"`); n != 1 {
		t.Errorf("errors = %d, want 1", n)
	}

	msg = c.input(contact.FieldFirstName, "names")
	if strings.Contains(msg.HTML, `data-testid="error"`) {
		t.Error("error not cleared after a valid value")
	}
}

func TestLiveSubmit(t *testing.T) {
	env := newTestEnv(t)
	c := env.dial(t, "s1")

	c.input(contact.FieldFirstName, "scout")
	c.input(contact.FieldLastName, "reilly")
	c.input(contact.FieldEmail, "test@test.com")
	c.input(contact.FieldMessage, "hello")
	msg := c.submit()

	for _, id := range []string{"firstnameDisplay", "lastnameDisplay", "emailDisplay", "messageDisplay"} {
		if !strings.Contains(msg.HTML, `data-testid="`+id+`"`) {
			t.Errorf("missing %s", id)
		}
	}
	expected := `
# HELP contactform_submissions_total Total number of submit attempts by result
# TYPE contactform_submissions_total counter
contactform_submissions_total{result="accepted"} 1
`
	if err := testutil.GatherAndCompare(env.reg, strings.NewReader(expected), "contactform_submissions_total"); err != nil {
		t.Error(err)
	}
}

func TestLiveErrors(t *testing.T) {
	env := newTestEnv(t)
	c := env.dial(t, "s1")

	tests := []struct {
		name     string
		payload  any
		wantCode string
	}{
		{"unknown hid", LiveEvent{HID: "h99", Event: "input", Value: "x"}, "CF001"},
		{"unknown event", LiveEvent{HID: "h1", Event: "click"}, "CF001"},
		{"missing hid", LiveEvent{Event: "input"}, "CF010"},
		{"not json", "garbage", "CF010"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if s, ok := tt.payload.(string); ok {
				err = c.conn.WriteMessage(websocket.TextMessage, []byte(s))
			} else {
				err = c.conn.WriteJSON(tt.payload)
			}
			if err != nil {
				t.Fatal(err)
			}
			msg := c.read()
			if msg.Type != "error" || msg.Code != tt.wantCode {
				t.Errorf("reply = %+v, want error %s", msg, tt.wantCode)
			}
			if want := tt.wantCode + ": " + errors.New(tt.wantCode).Message; msg.Error != want {
				t.Errorf("Error = %q, want %q", msg.Error, want)
			}
		})
	}

	// The connection survives bad events.
	if msg := c.input(contact.FieldLastName, "reilly"); msg.Type != "render" {
		t.Errorf("reply after errors = %+v", msg)
	}
}

func TestLiveResume(t *testing.T) {
	env := newTestEnv(t)

	c := env.dial(t, "resume-me")
	c.input(contact.FieldFirstName, "scout")
	c.input(contact.FieldEmail, "bad")
	c.conn.Close()

	waitFor(t, func() bool {
		data, _ := env.store.Load(context.Background(), "resume-me")
		return data != nil
	})

	_, body := env.get(t, "/", "resume-me")
	if !strings.Contains(body, `value="scout"`) {
		t.Errorf("page did not resume firstName:\n%s", body)
	}
	if !strings.Contains(body, "email must be a valid email address.") {
		t.Error("page did not resume the email error")
	}

	c2 := env.dial(t, "resume-me")
	if !strings.Contains(c2.html, `value="scout"`) {
		t.Error("live reconnect did not resume the form")
	}
	expected := `
# HELP contactform_reconnects_total Total number of live connections that resumed a saved form
# TYPE contactform_reconnects_total counter
contactform_reconnects_total 1
`
	if err := testutil.GatherAndCompare(env.reg, strings.NewReader(expected), "contactform_reconnects_total"); err != nil {
		t.Error(err)
	}
}

func TestLiveRejectsCrossOrigin(t *testing.T) {
	env := newTestEnv(t)
	u := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/live"
	_, resp, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": {"http://evil.example"}})
	if err == nil {
		t.Fatal("cross-origin dial succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}
}

func TestShutdownSavesLiveForms(t *testing.T) {
	store := session.NewMemoryStore(session.WithCleanupInterval(time.Hour))
	defer store.Close()

	cfg := DefaultServerConfig()
	cfg.ShutdownTimeout = 5 * time.Second
	srv := New(cfg, WithStore(store), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	u := "ws://" + ln.Addr().String() + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(u, http.Header{"Cookie": {testCookie + "=shutdown"}})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	c := &liveClient{t: t, conn: conn}
	c.read()
	c.input(contact.FieldLastName, "reilly")

	waitFor(t, func() bool { return srv.LiveConnections() == 1 })
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Serve() = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}

	data, err := store.Load(context.Background(), "shutdown")
	if err != nil || data == nil {
		t.Fatalf("no saved state: %v", err)
	}
	snap, err := session.Decode[contact.State](data)
	if err != nil {
		t.Fatal(err)
	}
	if snap.State.Form.Values[contact.FieldLastName] != "reilly" {
		t.Errorf("saved state = %+v", snap.State)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
