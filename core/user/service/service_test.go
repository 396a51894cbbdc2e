package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taskhive/taskhive/core/user/data/repository"
	"github.com/taskhive/taskhive/core/user/structs"
	"github.com/taskhive/taskhive/ctxutil"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/data/datatest"
	"github.com/taskhive/taskhive/logging/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(t *testing.T) (*Service, *structs.User) {
	t.Helper()
	repo, err := repository.NewUserRepository(datatest.New(t), logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	now := data.Now()
	u := &structs.User{
		ID: uuid.NewString(), Email: "dana@example.com", Username: "dana",
		PasswordHash: "secret-hash", OTP: "654321", CreatedAt: now, UpdatedAt: now,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return NewService(repo, logger.Nop()), u
}

func TestHandleMe(t *testing.T) {
	svc, u := setup(t)

	r := gin.New()
	r.GET("/me", func(c *gin.Context) {
		ctxutil.BindGin(c, ctxutil.SetUserID(c.Request.Context(), u.ID))
	}, svc.HandleMe)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["email"] != "dana@example.com" {
		t.Errorf("email = %v", body["email"])
	}
	for _, hidden := range []string{"password_hash", "PasswordHash", "otp", "OTP"} {
		if _, ok := body[hidden]; ok {
			t.Errorf("%s must not be serialised", hidden)
		}
	}
}

func TestHandleMeUnauthenticated(t *testing.T) {
	svc, _ := setup(t)

	r := gin.New()
	r.GET("/me", svc.HandleMe)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", w.Code)
	}
}

func TestSummaries(t *testing.T) {
	svc, u := setup(t)
	got, err := svc.Summaries(context.Background(), []string{u.ID, "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Username != "dana" {
		t.Errorf("summaries = %+v", got)
	}
}
