package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error returns empty", err: nil, wantCode: ""},
		{name: "wrapped not found", err: fmt.Errorf("load catalog: %w", ErrNotFound), wantCode: "CAT001"},
		{name: "wrapped parse error", err: fmt.Errorf("decode: %w", ErrParse), wantCode: "CAT002"},
		{name: "network error", err: fmt.Errorf("fetch: %w", ErrNetwork), wantCode: "CAT003"},
		{name: "local read error", err: fmt.Errorf("read catalog: %w", ErrRead), wantCode: "CAT004"},
		{name: "missing project", err: fmt.Errorf("show x: %w", ErrProjectNotFound), wantCode: "PRJ001"},
		{name: "unknown video", err: fmt.Errorf("%w: %q", ErrUnknownVideoType, "x"), wantCode: "VID001"},
		{name: "incomplete video", err: ErrInvalidVideo, wantCode: "VID002"},
		{name: "deadline", err: context.DeadlineExceeded, wantCode: "ERR001"},
		{name: "session pattern", err: errors.New("Session Expired for id 123"), wantCode: "SES001"},
		{name: "page pattern", err: errors.New("route /xx: page not found"), wantCode: "NAV001"},
		{name: "rate limit pattern", err: errors.New("rate limit exceeded"), wantCode: "RATE001"},
		{name: "unknown error returns default", err: errors.New("boom"), wantCode: "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrNotFound)
	want := "The portfolio catalog could not be found (Code: CAT001). Run the sync tool to regenerate the catalog"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil error is not user facing")
	}
	if !IsUserFacing(ErrParse) {
		t.Error("parse error is user facing")
	}
	if IsUserFacing(errors.New("random internal error xyz")) {
		t.Error("unknown error is not user facing")
	}
}
