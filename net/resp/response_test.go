package resp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taskhive/taskhive/ecode"
)

func TestSuccessWritesPayload(t *testing.T) {
	w := httptest.NewRecorder()
	Success(w, map[string]string{"id": "b1"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["id"] != "b1" {
		t.Errorf("body = %v", body)
	}
}

func TestWithStatusCodeMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WithStatusCode(w, http.StatusCreated, "created")

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["message"] != "created" {
		t.Errorf("body = %v", body)
	}
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	WithStatusCode(w, http.StatusNoContent)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("status = %d, body = %q", w.Code, w.Body.String())
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   int
	}{
		{fmt.Errorf("board %w", ecode.ErrNotFound), http.StatusNotFound, ecode.NothingFound},
		{fmt.Errorf("workspace %w", ecode.ErrForbidden), http.StatusForbidden, ecode.AccessDenied},
		{fmt.Errorf("email %w", ecode.ErrConflict), http.StatusConflict, ecode.Conflict},
		{fmt.Errorf("title %w", ecode.ErrValidation), http.StatusBadRequest, ecode.RequestErr},
		{errors.New("sql: connection reset"), http.StatusInternalServerError, ecode.ServerErr},
		{Forbidden("nope"), http.StatusForbidden, ecode.AccessDenied},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		Fail(w, FromError(tt.err))
		if w.Code != tt.status {
			t.Errorf("%v: status = %d, want %d", tt.err, w.Code, tt.status)
		}
		var body Exception
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Code != tt.code {
			t.Errorf("%v: code = %d, want %d", tt.err, body.Code, tt.code)
		}
	}
}

func TestFromErrorHidesInternalDetails(t *testing.T) {
	ex := FromError(errors.New("pq: password authentication failed"))
	if ex.Message != ecode.Text(ecode.ServerErr) {
		t.Errorf("message leaked: %q", ex.Message)
	}
}
