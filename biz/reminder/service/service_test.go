package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/biz/reminder/structs"
	"github.com/taskhive/taskhive/ctxutil"
	"github.com/taskhive/taskhive/internal/testenv"
	"github.com/taskhive/taskhive/logging/logger"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type scanner struct{ runs int }

func (s *scanner) RunOnce(context.Context) (*structs.Result, error) {
	s.runs++
	return &structs.Result{Scanned: 2, Sent: 1, Skipped: 1, StartedAt: now, WindowEnd: now.Add(time.Hour)}, nil
}

func (s *scanner) Window() (time.Time, time.Time) { return now, now.Add(time.Hour) }

type memberships map[string][]string

func (m memberships) IDsForUser(_ context.Context, userID string) ([]string, error) {
	return m[userID], nil
}

func TestDueSoonScopedToMemberships(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)
	a := env.User("a@example.com")
	b := env.User("b@example.com")
	mine := env.Chain(a.ID)
	theirs := env.Chain(b.ID)
	c := env.Card(mine.List.ID, "mine", a.ID, now.Add(20*time.Minute))
	env.Card(mine.List.ID, "far", a.ID, now.Add(5*time.Hour))
	env.Card(theirs.List.ID, "theirs", b.ID, now.Add(20*time.Minute))

	svc := NewService(&scanner{}, env.Cards, memberships{a.ID: {mine.Workspace.ID}}, logger.Nop())
	cards, err := svc.DueSoon(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 1 || cards[0].ID != c.ID {
		t.Errorf("due soon = %+v", cards)
	}
	cards, err = svc.DueSoon(ctx, "nobody")
	if err != nil || len(cards) != 0 {
		t.Errorf("no memberships = %+v, %v", cards, err)
	}
}

func TestHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := testenv.New(t)
	a := env.User("a@example.com")
	mine := env.Chain(a.ID)
	env.Card(mine.List.ID, "mine", a.ID, now.Add(20*time.Minute))
	sc := &scanner{}
	svc := NewService(sc, env.Cards, memberships{a.ID: {mine.Workspace.ID}}, logger.Nop())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctxutil.BindGin(c, ctxutil.SetUserID(c.Request.Context(), a.ID))
		c.Next()
	})
	r.POST("/reminders/send", svc.HandleSend)
	r.GET("/reminders/due-soon", svc.HandleDueSoon)
	r.GET("/reminders/due-soon/count", svc.HandleDueSoonCount)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reminders/send", nil))
	if w.Code != http.StatusOK || sc.runs != 1 {
		t.Fatalf("send = %d, runs %d", w.Code, sc.runs)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reminders/due-soon/count", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("count status = %d", w.Code)
	}
	var body structs.Count
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 1 {
		t.Errorf("count body = %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reminders/due-soon", nil))
	if w.Code != http.StatusOK {
		t.Errorf("due soon status = %d", w.Code)
	}
}
