package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tatianab/backrooms/internal/session"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestStatic(t *testing.T) {
	if _, err := (Static{}).CurrentUser(context.Background()); !errors.Is(err, session.ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated, got %v", err)
	}
	if _, err := Player("   ").CurrentUser(context.Background()); !errors.Is(err, session.ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated for a blank name, got %v", err)
	}

	u, err := Player("Wanderer").CurrentUser(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if u.Name != "Wanderer" || u.ID != UserID("wanderer") {
		t.Errorf("Unexpected user %+v", u)
	}
}

func TestUserIDIsStable(t *testing.T) {
	if UserID("Alice") != UserID(" alice ") {
		t.Error("Expected ids to ignore case and surrounding space")
	}
	if UserID("alice") == UserID("bob") {
		t.Error("Expected distinct players to get distinct ids")
	}
}

func TestContext(t *testing.T) {
	if _, err := (Context{}).CurrentUser(context.Background()); !errors.Is(err, session.ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated, got %v", err)
	}
	want := session.User{ID: "user-1", Name: "one"}
	got, err := (Context{}).CurrentUser(WithUser(context.Background(), want))
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestTokensRoundTrip(t *testing.T) {
	tokens, err := NewTokens(secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	token, issued, err := tokens.Issue("Wanderer")
	if err != nil {
		t.Fatal(err)
	}
	got, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != issued {
		t.Errorf("Expected %+v, got %+v", issued, got)
	}
}

func TestTokensReject(t *testing.T) {
	tokens, _ := NewTokens(secret, time.Hour)
	other, _ := NewTokens("another-secret-of-enough-length", time.Hour)
	forged, _, _ := other.Issue("Wanderer")

	expired, _ := NewTokens(secret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, _ := expired.Issue("Wanderer")

	for name, token := range map[string]string{
		"empty":   "",
		"garbage": "not-a-token",
		"forged":  forged,
		"expired": stale,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := tokens.Verify(token); !errors.Is(err, session.ErrUnauthenticated) {
				t.Errorf("Expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestNewTokensValidates(t *testing.T) {
	if _, err := NewTokens("short", time.Hour); err == nil {
		t.Error("Expected a short secret to be rejected")
	}
	if _, err := NewTokens(secret, 0); err == nil {
		t.Error("Expected a zero ttl to be rejected")
	}
}
