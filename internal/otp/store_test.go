package otp

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAlwaysFourDigits(t *testing.T) {
	s := NewStore()
	for i := 0; i < 200; i++ {
		code := s.Issue("r1")
		if len(code) != 4 {
			t.Fatalf("code %q has %d characters, want 4", code, len(code))
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q has non-digit %q", code, r)
			}
		}
	}
}

func TestValidateExpiryBoundary(t *testing.T) {
	issued := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		at      time.Time
		wantErr error
	}{
		{"just inside", issued.Add(3*time.Minute - time.Second), nil},
		{"just outside", issued.Add(3*time.Minute + time.Second), ErrExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := issued
			s := NewStoreWithClock(func() time.Time { return now })

			code := s.Issue("r1")
			now = tt.at

			if err := s.Validate("r1", code); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate at %v: err = %v, want %v", tt.at, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMismatchKeepsCode(t *testing.T) {
	s := NewStore()
	code := s.Issue("r1")

	wrong := "0000"
	if wrong == code {
		wrong = "0001"
	}

	if err := s.Validate("r1", wrong); !errors.Is(err, ErrBadCode) {
		t.Fatalf("wrong code err = %v, want ErrBadCode", err)
	}

	// the right code still works after a failed attempt
	if err := s.Validate("r1", code); err != nil {
		t.Fatalf("retry with real code: %v", err)
	}

	// a match consumes the code
	if err := s.Validate("r1", code); !errors.Is(err, ErrNoCode) {
		t.Fatalf("reuse err = %v, want ErrNoCode", err)
	}
}

func TestValidateUnknownRide(t *testing.T) {
	s := NewStore()
	if err := s.Validate("ghost", "1234"); !errors.Is(err, ErrNoCode) {
		t.Fatalf("err = %v, want ErrNoCode", err)
	}
}

func TestReissueReplacesCode(t *testing.T) {
	s := NewStore()
	first := s.Issue("r1")
	second := s.Issue("r1")

	if first != second {
		if err := s.Validate("r1", first); !errors.Is(err, ErrBadCode) {
			t.Fatalf("old code err = %v, want ErrBadCode", err)
		}
	}
	if err := s.Validate("r1", second); err != nil {
		t.Fatalf("fresh code: %v", err)
	}
}
