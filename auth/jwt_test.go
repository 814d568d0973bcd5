package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	org := "org-1"
	token, err := GenerateToken("secret", "user-1", &org, "alice", true, time.Hour)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}

	claims, err := ValidateToken("secret", token)
	if err != nil {
		t.Fatalf("validating token: %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "alice" || !claims.IsAdmin {
		t.Errorf("claims mangled: %+v", claims)
	}
	if claims.OrgID == nil || *claims.OrgID != org {
		t.Errorf("org claim mangled: %v", claims.OrgID)
	}
	if claims.ID == "" {
		t.Error("missing JTI")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", "user-1", nil, "alice", false, time.Hour)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	if _, err := ValidateToken("other", token); err == nil {
		t.Error("expected validation to fail with the wrong secret")
	}
}

func TestTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", "user-1", nil, "alice", false, -time.Minute)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	if _, err := ValidateToken("secret", token); err == nil {
		t.Error("expected validation to fail for an expired token")
	}
}
