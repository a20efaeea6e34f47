package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/forttask/forttask/internal/auth"
)

var testIdentity = auth.Identity{
	UserID:        7,
	Username:      "alice",
	HouseholdID:   3,
	HouseholdName: "Baggins",
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := NewManager([]byte("test-secret"), 24*time.Hour)

	token, err := m.Issue(testIdentity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if *got != testIdentity {
		t.Errorf("identity = %+v, want %+v", *got, testIdentity)
	}
}

func TestVerifyExpired(t *testing.T) {
	m := NewManager([]byte("test-secret"), 24*time.Hour)

	issued := time.Now()
	token, err := m.Issue(testIdentity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Jump past the 24h lifetime.
	m.now = func() time.Time { return issued.Add(24*time.Hour + time.Minute) }

	_, err = m.Verify(token)
	if !errors.Is(err, ErrExpired) {
		t.Errorf("err = %v, want ErrExpired", err)
	}
}

func TestVerifyJustBeforeExpiry(t *testing.T) {
	m := NewManager([]byte("test-secret"), 24*time.Hour)

	issued := time.Now()
	m.now = func() time.Time { return issued }

	token, err := m.Issue(testIdentity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// One second shy of expiry the token is still good.
	m.now = func() time.Time { return issued.Add(24*time.Hour - time.Second) }

	got, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.UserID != testIdentity.UserID {
		t.Errorf("user id = %d, want %d", got.UserID, testIdentity.UserID)
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	m := NewManager([]byte("test-secret"), 24*time.Hour)

	token, err := m.Issue(testIdentity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Flip a character in the signature segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = m.Verify(tampered)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewManager([]byte("secret-a"), 24*time.Hour)
	verifier := NewManager([]byte("secret-b"), 24*time.Hour)

	token, err := issuer.Issue(testIdentity)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	m := NewManager([]byte("test-secret"), 24*time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.Verify(token); !errors.Is(err, ErrInvalid) {
			t.Errorf("Verify(%q) err = %v, want ErrInvalid", token, err)
		}
	}
}
