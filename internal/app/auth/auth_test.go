package auth

import (
	"testing"
	"time"

	"github.com/kaiyuenlam/UniHaven/internal/app/domain/specialist"
)

func TestIssueAndVerify(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	sp := specialist.Specialist{ID: "spec-1", Email: "alice@cedars.hku.hk"}
	token, expires, err := issuer.Issue(sp)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if until := time.Until(expires); until < 55*time.Minute || until > time.Hour {
		t.Fatalf("expiry %v not near one hour out", expires)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.SpecialistID != "spec-1" || claims.Email != "alice@cedars.hku.hk" {
		t.Fatalf("claims = %#v", claims)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	a, err := NewIssuer("secret-a", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	b, err := NewIssuer("secret-b", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	token, _, err := a.Issue(specialist.Specialist{ID: "spec-1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := b.Verify(token); err == nil {
		t.Fatal("token verified with wrong secret")
	}
	if _, err := a.Verify("not-a-token"); err == nil {
		t.Fatal("garbage token verified")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Nanosecond)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	token, _, err := issuer.Issue(specialist.Specialist{ID: "spec-1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := issuer.Verify(token); err == nil {
		t.Fatal("expired token verified")
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
