package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestParse_ValidHS256(t *testing.T) {
	secret := []byte("test-secret")
	token, err := Issue(secret, "alice", Claims{
		Name:   "Alice",
		Scopes: []string{ScopeCatalogWrite},
	}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := Parse(secret, token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "alice" || claims.Actor() != "alice" {
		t.Fatalf("expected subject alice, got %q", claims.Subject)
	}
	if !claims.HasScope(ScopeCatalogWrite) || claims.HasScope(ScopeAuditRead) {
		t.Fatalf("unexpected scopes %v", claims.Scopes)
	}
}

func TestParse_RejectsUnexpectedAlgorithm(t *testing.T) {
	secret := []byte("test-secret")
	now := time.Now()
	claims := Claims{
		Scopes: []string{ScopeAdmin},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   "u1",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS384, claims)
	tokenStr, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	if _, err := Parse(secret, tokenStr); err == nil {
		t.Fatalf("expected parse to reject non-HS256 token")
	}
}

func TestParse_RejectsExpiredAndForeignTokens(t *testing.T) {
	secret := []byte("test-secret")

	expired, err := Issue(secret, "alice", Claims{}, -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Parse(secret, expired); err == nil {
		t.Fatal("expected expired token to be rejected")
	}

	foreign, err := Issue([]byte("other-secret"), "alice", Claims{}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Parse(secret, foreign); err == nil {
		t.Fatal("expected token signed with another key to be rejected")
	}
}

func TestAdminScopeImpliesOthers(t *testing.T) {
	c := &Claims{Scopes: []string{ScopeAdmin}}
	for _, s := range KnownScopes {
		if !c.HasScope(s) {
			t.Fatalf("admin should imply %q", s)
		}
	}
	var nilClaims *Claims
	if nilClaims.HasScope(ScopeAdmin) {
		t.Fatal("nil claims should grant nothing")
	}
}
