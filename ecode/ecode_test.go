package ecode

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, OK},
		{fmt.Errorf("board %w", ErrNotFound), NothingFound},
		{fmt.Errorf("wrapped: %w", fmt.Errorf("card %w", ErrForbidden)), AccessDenied},
		{fmt.Errorf("email %w", ErrConflict), Conflict},
		{fmt.Errorf("otp %w", ErrValidation), RequestErr},
		{ErrUnauthorized, Unauthorized},
		{ErrTooLarge, PayloadTooLarge},
		{fmt.Errorf("smtp: %w", ErrUnavailable), ServiceUnavailable},
		{errors.New("boom"), ServerErr},
	}

	for _, tt := range tests {
		if got := CodeOf(tt.err); got != tt.want {
			t.Errorf("CodeOf(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestToHTTPStatus(t *testing.T) {
	if got := ToHTTPStatus(NothingFound); got != http.StatusNotFound {
		t.Errorf("NothingFound -> %d", got)
	}
	if got := ToHTTPStatus(AccessDenied); got != http.StatusForbidden {
		t.Errorf("AccessDenied -> %d", got)
	}
	if got := ToHTTPStatus(12345); got != http.StatusInternalServerError {
		t.Errorf("unknown -> %d", got)
	}
}

func TestMessages(t *testing.T) {
	if got := NotExist("board"); got != "board does not exist" {
		t.Errorf("NotExist = %q", got)
	}
	if got := FieldIsRequired(); got != "is required" {
		t.Errorf("FieldIsRequired = %q", got)
	}
	if got := Denied("not a member"); got != "access denied: not a member" {
		t.Errorf("Denied = %q", got)
	}
}

func TestNewKeepsMessageAndKind(t *testing.T) {
	err := New(ErrNotFound, NotExist("board"))
	if err.Error() != "board does not exist" {
		t.Errorf("message = %q", err.Error())
	}
	if CodeOf(err) != NothingFound {
		t.Errorf("code = %d", CodeOf(err))
	}
	wrapped := fmt.Errorf("load: %w", Newf(ErrForbidden, "user %s", "u1"))
	if CodeOf(wrapped) != AccessDenied {
		t.Errorf("wrapped code = %d", CodeOf(wrapped))
	}
}
