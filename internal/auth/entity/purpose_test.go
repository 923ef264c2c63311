package entity

import (
	"testing"
	"time"
)

func TestPurpose_String(t *testing.T) {
	tests := []struct {
		in   Purpose
		want string
	}{
		{PurposeVerifyEmail, "VERIFY_EMAIL"},
		{PurposeLogin, "LOGIN"},
		{PurposeResetPassword, "RESET_PASSWORD"},
		{Purpose(9), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Fatalf("Purpose(%d).String() = %q, want %q", tt.in, got, tt.want)
		}
		if tt.in.Valid() != (tt.want != "UNKNOWN") {
			t.Fatalf("Purpose(%d).Valid() mismatch", tt.in)
		}
	}
}

func TestErrCooldown_WaitSeconds(t *testing.T) {
	tests := []struct {
		remaining time.Duration
		want      int64
	}{
		{30 * time.Second, 30},
		{29*time.Second + time.Millisecond, 30},
		{time.Millisecond, 1},
		{0, 1},
	}

	for _, tt := range tests {
		e := &ErrCooldown{Remaining: tt.remaining}
		if got := e.WaitSeconds(); got != tt.want {
			t.Fatalf("WaitSeconds(%s) = %d, want %d", tt.remaining, got, tt.want)
		}
	}
}

func TestVerification_Expired(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	v := Verification{ExpiresAt: now}

	if !v.Expired(now) {
		t.Fatal("Expired() at expires_at = false, want true")
	}
	if v.Expired(now.Add(-time.Second)) {
		t.Fatal("Expired() before expires_at = true, want false")
	}
}
