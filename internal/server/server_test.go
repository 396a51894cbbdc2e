package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/taskhive/taskhive/config"
	"github.com/taskhive/taskhive/data/datatest"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/messaging/email"
	"github.com/taskhive/taskhive/oss"
)

type app struct {
	t      *testing.T
	srv    *Server
	h      http.Handler
	mailer *email.MemorySender
}

func newApp(t *testing.T) *app {
	t.Helper()
	cfg := config.Default()
	cfg.RunMode = "test"
	cfg.Reminder.Enabled = false

	storage, err := oss.NewFileSystem(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	mailer := email.NewMemorySender()
	srv, err := New(context.Background(), cfg, logger.Nop(),
		WithData(datatest.New(t)),
		WithEmailSender(mailer),
		WithStorage(storage),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { srv.Cleanup(context.Background()) })
	return &app{t: t, srv: srv, h: srv.Handler(), mailer: mailer}
}

// do sends a JSON request and decodes the response into out when it is
// not nil.
func (a *app) do(method, path, token string, body any, out any) int {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.h.ServeHTTP(w, req)
	if out != nil && w.Code < 300 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			a.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code
}

type idResp struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// signUp registers and logs in, returning the user id and access token.
func (a *app) signUp(email string) (string, string) {
	a.t.Helper()
	var u idResp
	if code := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": strings.Split(email, "@")[0], "email": email, "password": "secret1",
	}, &u); code != http.StatusCreated {
		a.t.Fatalf("register %s = %d", email, code)
	}
	var pair struct {
		AccessToken string `json:"access_token"`
	}
	if code := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": "secret1",
	}, &pair); code != http.StatusOK {
		a.t.Fatalf("login %s = %d", email, code)
	}
	return u.ID, pair.AccessToken
}

func (a *app) defaultWorkspace(token string) idResp {
	a.t.Helper()
	var list []idResp
	if code := a.do(http.MethodGet, "/api/workspaces", token, nil, &list); code != http.StatusOK {
		a.t.Fatalf("list workspaces = %d", code)
	}
	if len(list) != 1 || list[0].Name != "My Workspace" {
		a.t.Fatalf("workspaces = %+v", list)
	}
	return list[0]
}

func TestReminderEndToEnd(t *testing.T) {
	a := newApp(t)
	uid, token := a.signUp("ann@example.com")
	ws := a.defaultWorkspace(token)

	var b, l, c idResp
	if code := a.do(http.MethodPost, "/api/workspaces/"+ws.ID+"/boards", token, map[string]string{"title": "Launch"}, &b); code != http.StatusCreated {
		t.Fatalf("create board = %d", code)
	}
	if code := a.do(http.MethodPost, "/api/boards/"+b.ID+"/lists", token, map[string]string{"title": "To do"}, &l); code != http.StatusCreated {
		t.Fatalf("create list = %d", code)
	}
	due := time.Now().Add(30 * time.Minute).UTC()
	if code := a.do(http.MethodPost, "/api/lists/"+l.ID+"/cards", token, map[string]any{
		"title": "Ship it", "due_date": due, "assignee_id": uid,
	}, &c); code != http.StatusCreated {
		t.Fatalf("create card = %d", code)
	}

	res, err := a.srv.Reminders().Runner().RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Sent != 1 {
		t.Errorf("result = %+v", res)
	}
	sent := a.mailer.SentTo("ann@example.com")
	if len(sent) != 1 || sent[0].Subject != "Reminder: Card 'Ship it' is due soon!" {
		t.Fatalf("emails = %+v", sent)
	}

	var got struct {
		ReminderSent bool `json:"reminder_sent"`
	}
	if code := a.do(http.MethodGet, "/api/cards/"+c.ID, token, nil, &got); code != http.StatusOK || !got.ReminderSent {
		t.Errorf("card = %d %+v", code, got)
	}

	if _, err := a.srv.Reminders().Runner().RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := len(a.mailer.SentTo("ann@example.com")); n != 1 {
		t.Errorf("second scan sent again: %d emails", n)
	}
}

func TestNonMemberForbidden(t *testing.T) {
	a := newApp(t)
	_, ownerToken := a.signUp("owner@example.com")
	_, otherToken := a.signUp("other@example.com")
	ws := a.defaultWorkspace(ownerToken)

	var b idResp
	if code := a.do(http.MethodPost, "/api/workspaces/"+ws.ID+"/boards", ownerToken, map[string]string{"title": "Private"}, &b); code != http.StatusCreated {
		t.Fatalf("create board = %d", code)
	}
	if code := a.do(http.MethodGet, "/api/boards/"+b.ID, otherToken, nil, nil); code != http.StatusForbidden {
		t.Errorf("non-member read = %d, want 403", code)
	}
	if code := a.do(http.MethodGet, "/api/boards/does-not-exist", otherToken, nil, nil); code != http.StatusNotFound {
		t.Errorf("missing board = %d, want 404", code)
	}
	if code := a.do(http.MethodGet, "/api/boards/"+b.ID, "", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("anonymous read = %d, want 401", code)
	}
}

func TestInviteUnregisteredEmail(t *testing.T) {
	a := newApp(t)
	_, ownerToken := a.signUp("owner@example.com")
	ws := a.defaultWorkspace(ownerToken)

	var invite struct {
		Pending bool `json:"pending"`
	}
	if code := a.do(http.MethodPost, "/api/workspaces/"+ws.ID+"/invite", ownerToken, map[string]string{"email": "newbie@example.com"}, &invite); code != http.StatusOK {
		t.Fatalf("invite = %d", code)
	}
	if !invite.Pending {
		t.Error("invite of unknown email should be pending")
	}
	sent := a.mailer.SentTo("newbie@example.com")
	if len(sent) != 1 || sent[0].Subject != "You've been invited to My Workspace on TaskHive" {
		t.Errorf("invite emails = %+v", sent)
	}

	var entries []struct {
		Action string `json:"action"`
	}
	if code := a.do(http.MethodGet, "/api/workspaces/"+ws.ID+"/activity", ownerToken, nil, &entries); code != http.StatusOK {
		t.Fatalf("activity = %d", code)
	}
	found := false
	for _, e := range entries {
		found = found || e.Action == "Invited user"
	}
	if !found {
		t.Errorf("activity = %+v", entries)
	}

	_, newbieToken := a.signUp("newbie@example.com")
	if code := a.do(http.MethodGet, "/api/workspaces/"+ws.ID, newbieToken, nil, nil); code != http.StatusOK {
		t.Errorf("invited user reading workspace = %d, want 200", code)
	}

	// repeating the invite changes nothing and sends nothing
	if code := a.do(http.MethodPost, "/api/workspaces/"+ws.ID+"/invite", ownerToken, map[string]string{"email": "newbie@example.com"}, nil); code != http.StatusOK {
		t.Errorf("repeat invite = %d", code)
	}
	if n := len(a.mailer.SentTo("newbie@example.com")); n != 1 {
		t.Errorf("repeat invite sent %d emails", n)
	}
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	var body struct {
		Status string `json:"status"`
	}
	if code := a.do(http.MethodGet, "/health", "", nil, &body); code != http.StatusOK || body.Status != "healthy" {
		t.Errorf("health = %d %+v", code, body)
	}
	if code := a.do(http.MethodGet, "/api/nope", "", nil, nil); code != http.StatusNotFound {
		t.Errorf("unknown route = %d", code)
	}
}

func TestMetrics(t *testing.T) {
	a := newApp(t)
	a.do(http.MethodGet, "/health", "", nil, nil)
	if _, err := a.srv.Reminders().Runner().RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}

	var snap struct {
		Counters map[string]int64 `json:"counters"`
	}
	if code := a.do(http.MethodGet, "/metrics", "", nil, &snap); code != http.StatusOK {
		t.Fatalf("metrics = %d", code)
	}
	if snap.Counters["http_requests_total"] < 1 || snap.Counters["reminder_scans"] != 1 {
		t.Errorf("counters = %+v", snap.Counters)
	}
}
