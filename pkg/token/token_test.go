package token

import (
	"testing"
	"time"

	"github.com/wenhsiu/aiot-in-go/pkg/model"
)

var testSecret = []byte("test-secret")

func TestIssueAndParse(t *testing.T) {
	user := &model.User{ID: 7, Username: "operator"}

	tokenStr, err := Issue(testSecret, user, []string{"operator", "viewer"}, "aiot", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := Parse(testSecret, tokenStr)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if claims.UserID != 7 {
		t.Errorf("UserID = %d, want 7", claims.UserID)
	}
	if claims.Username != "operator" {
		t.Errorf("Username = %q, want operator", claims.Username)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "operator" {
		t.Errorf("Roles = %v, want [operator viewer]", claims.Roles)
	}
	if claims.Issuer != "aiot" {
		t.Errorf("Issuer = %q, want aiot", claims.Issuer)
	}
}

func TestParseWrongSecret(t *testing.T) {
	user := &model.User{Username: "operator"}

	tokenStr, err := Issue(testSecret, user, nil, "aiot", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := Parse([]byte("other-secret"), tokenStr); err == nil {
		t.Error("expected error parsing token with wrong secret")
	}
}

func TestParseExpiredToken(t *testing.T) {
	user := &model.User{Username: "operator"}

	tokenStr, err := Issue(testSecret, user, nil, "aiot", -time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := Parse(testSecret, tokenStr); err == nil {
		t.Error("expected error parsing expired token")
	}
}

func TestSecretNotSet(t *testing.T) {
	t.Setenv("AIOT_TOKEN_SECRET", "")

	if _, err := Secret(); err != ErrSecretNotSet {
		t.Errorf("expected ErrSecretNotSet, got %v", err)
	}
}
