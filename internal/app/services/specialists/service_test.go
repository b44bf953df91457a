package specialists

import (
	"context"
	"testing"

	"github.com/kaiyuenlam/UniHaven/internal/app/storage/memory"
)

func TestService_CreateAndAuthenticate(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	sp, err := svc.Create(ctx, "Alice Wong", "ALICE@cedars.hku.hk", "28592111", "s3cret")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sp.Email != "alice@cedars.hku.hk" {
		t.Fatalf("email not lowercased: %q", sp.Email)
	}
	if sp.PasswordHash == "" || sp.PasswordHash == "s3cret" {
		t.Fatalf("password stored in the clear or missing: %q", sp.PasswordHash)
	}

	got, err := svc.Authenticate(ctx, "alice@cedars.hku.hk", "s3cret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != sp.ID {
		t.Fatalf("authenticated id = %s, want %s", got.ID, sp.ID)
	}
}

func TestService_AuthenticateFailures(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Alice Wong", "alice@cedars.hku.hk", "", "s3cret"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, "No Password", "bob@cedars.hku.hk", "", ""); err != nil {
		t.Fatalf("create without password: %v", err)
	}

	cases := []struct {
		name, email, password string
	}{
		{"wrong password", "alice@cedars.hku.hk", "nope"},
		{"unknown email", "ghost@cedars.hku.hk", "s3cret"},
		{"no password set", "bob@cedars.hku.hk", "anything"},
		{"empty password", "alice@cedars.hku.hk", ""},
	}
	for _, tc := range cases {
		if _, err := svc.Authenticate(ctx, tc.email, tc.password); err != ErrInvalidCredentials {
			t.Fatalf("%s: err = %v, want ErrInvalidCredentials", tc.name, err)
		}
	}
}

func TestService_UpdateRotatesPassword(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	sp, err := svc.Create(ctx, "Alice Wong", "alice@cedars.hku.hk", "", "old-pass")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newPass := "new-pass"
	if _, err := svc.Update(ctx, sp.ID, nil, nil, nil, &newPass); err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := svc.Authenticate(ctx, sp.Email, "old-pass"); err != ErrInvalidCredentials {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, err := svc.Authenticate(ctx, sp.Email, "new-pass"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}
