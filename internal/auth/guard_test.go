package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/yourusername/todo-api/internal/apierr"
	"github.com/yourusername/todo-api/internal/storage"
)

func TestOwns(t *testing.T) {
	alice := Principal{UserID: 1, Role: storage.RoleRegularUser}
	if !Owns(alice, 1) {
		t.Fatal("expected owner to be permitted")
	}
	if Owns(alice, 2) {
		t.Fatal("expected other user's resource to be denied")
	}
	if Owns(Principal{}, 0) {
		t.Fatal("expected anonymous principal to be denied")
	}
}

func TestAuthorizeReturnsForbidden(t *testing.T) {
	err := Authorize(Principal{UserID: 1}, 2, "todo")
	if !errors.Is(err, apierr.New(apierr.CodeForbidden, "")) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
	if err := Authorize(Principal{UserID: 2}, 2, "todo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCanOwn(t *testing.T) {
	if !CanOwn(Principal{UserID: 1, Role: storage.RoleRegularUser}) {
		t.Fatal("expected regular user to own resources")
	}
	if CanOwn(Principal{UserID: 1, Role: storage.RoleAdmin}) {
		t.Fatal("expected admin not to own resources")
	}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)
	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !h.Check("correct horse", hash) {
		t.Fatal("expected password to match")
	}
	if h.Check("wrong horse", hash) {
		t.Fatal("expected wrong password to fail")
	}

	long := "p" + strings.Repeat("x", 120)
	longHash, err := h.Hash(long)
	if err != nil {
		t.Fatalf("Hash long password: %v", err)
	}
	if !h.Check(long, longHash) {
		t.Fatal("expected long password to match")
	}
	if h.Check(long[:100], longHash) {
		t.Fatal("expected truncated long password to fail")
	}
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	if got := NewBcryptHasher(1).Cost; got != 10 {
		t.Fatalf("Cost = %d, want default", got)
	}
}
