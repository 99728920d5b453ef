package memory

import (
	"context"
	"testing"

	"github.com/chatforge/chatforge/pkg/user"
)

func TestMemoryRepository(t *testing.T) {
	suite := &user.RepositoryTestSuite{
		NewRepository: func(t *testing.T) user.Repository { return New() },
	}
	suite.RunAllTests(t)
}

func TestReturnedUserIsACopy(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.Create(ctx, &user.User{ID: "u-1", Username: "alice", Phone: "1", Active: true}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByID(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	got.Username = "mutated"

	again, err := store.GetByID(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if again.Username != "alice" {
		t.Errorf("store leaked internal pointer: %+v", again)
	}
}
