package user

import (
	"context"
	"sync"
	"testing"
	"time"
)

// RepositoryTestSuite defines a conformance suite that can be run against
// any Repository implementation.
type RepositoryTestSuite struct {
	NewRepository func(t *testing.T) Repository
}

// RunAllTests runs the full suite against the provided implementation.
func (s *RepositoryTestSuite) RunAllTests(t *testing.T) {
	t.Run("CreateAndLookup", s.TestCreateAndLookup)
	t.Run("DuplicateUsername", s.TestDuplicateUsername)
	t.Run("DuplicatePhone", s.TestDuplicatePhone)
	t.Run("LookupByIdentifier", s.TestLookupByIdentifier)
	t.Run("NotFound", s.TestNotFound)
	t.Run("DeactivateAndReactivate", s.TestDeactivateAndReactivate)
	t.Run("ReactivateRenameCollision", s.TestReactivateRenameCollision)
	t.Run("ConcurrentReads", s.TestConcurrentReads)
}

func newTestUser(id, username, phone string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id,
		Username:     username,
		Phone:        phone,
		PasswordHash: "$2a$12$hash",
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// TestCreateAndLookup verifies a created user is retrievable by every key.
func (s *RepositoryTestSuite) TestCreateAndLookup(t *testing.T) {
	repo := s.NewRepository(t)
	defer repo.Close()
	ctx := context.Background()

	u := newTestUser("u-1", "alice", "13800000001")
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for name, get := range map[string]func() (*User, error){
		"ByID":       func() (*User, error) { return repo.GetByID(ctx, "u-1") },
		"ByUsername": func() (*User, error) { return repo.GetByUsername(ctx, "alice") },
		"ByPhone":    func() (*User, error) { return repo.GetByPhone(ctx, "13800000001") },
	} {
		got, err := get()
		if err != nil {
			t.Fatalf("%s failed: %v", name, err)
		}
		if got.ID != u.ID || got.Username != u.Username || got.Phone != u.Phone {
			t.Errorf("%s returned wrong user: %+v", name, got)
		}
		if !got.Active {
			t.Errorf("%s: expected active user", name)
		}
	}
}

// TestDuplicateUsername verifies username uniqueness.
func (s *RepositoryTestSuite) TestDuplicateUsername(t *testing.T) {
	repo := s.NewRepository(t)
	defer repo.Close()
	ctx := context.Background()

	if err := repo.Create(ctx, newTestUser("u-1", "alice", "13800000001")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := repo.Create(ctx, newTestUser("u-2", "alice", "13800000002"))
	if !IsDuplicate(err) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

// TestDuplicatePhone verifies phone uniqueness.
func (s *RepositoryTestSuite) TestDuplicatePhone(t *testing.T) {
	repo := s.NewRepository(t)
	defer repo.Close()
	ctx := context.Background()

	if err := repo.Create(ctx, newTestUser("u-1", "alice", "13800000001")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := repo.Create(ctx, newTestUser("u-2", "bob", "13800000001"))
	if !IsDuplicate(err) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

// TestLookupByIdentifier verifies username-then-phone resolution.
func (s *RepositoryTestSuite) TestLookupByIdentifier(t *testing.T) {
	repo := s.NewRepository(t)
	defer repo.Close()
	ctx := context.Background()

	if err := repo.Create(ctx, newTestUser("u-1", "alice", "13800000001")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	byName, err := repo.GetByIdentifier(ctx, "alice")
	if err != nil || byName.ID != "u-1" {
		t.Fatalf("identifier lookup by username: got %v, %v", byName, err)
	}

	byPhone, err := repo.GetByIdentifier(ctx, "13800000001")
	if err != nil || byPhone.ID != "u-1" {
		t.Fatalf("identifier lookup by phone: got %v, %v", byPhone, err)
	}

	if _, err := repo.GetByIdentifier(ctx, "nobody"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

// TestNotFound verifies misses surface as *NotFoundError.
func (s *RepositoryTestSuite) TestNotFound(t *testing.T) {
	repo := s.NewRepository(t)
	defer repo.Close()
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "missing"); !IsNotFound(err) {
		t.Errorf("GetByID: expected not found, got %v", err)
	}
	if err := repo.SetActive(ctx, "missing", false); !IsNotFound(err) {
		t.Errorf("SetActive: expected not found, got %v", err)
	}
	if err := repo.Reactivate(ctx, "missing", "x", "h"); !IsNotFound(err) {
		t.Errorf("Reactivate: expected not found, got %v", err)
	}
}

// TestDeactivateAndReactivate verifies the deactivation lifecycle.
func (s *RepositoryTestSuite) TestDeactivateAndReactivate(t *testing.T) {
	repo := s.NewRepository(t)
	defer repo.Close()
	ctx := context.Background()

	if err := repo.Create(ctx, newTestUser("u-1", "alice", "13800000001")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.SetActive(ctx, "u-1", false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	got, err := repo.GetByID(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Active {
		t.Error("expected inactive user")
	}
	if got.DeactivatedAt == nil {
		t.Error("expected DeactivatedAt to be set")
	}

	// The phone stays claimable only through reactivation.
	if err := repo.Create(ctx, newTestUser("u-2", "eve", "13800000001")); !IsDuplicate(err) {
		t.Fatalf("expected duplicate on deactivated phone, got %v", err)
	}

	if err := repo.Reactivate(ctx, "u-1", "alice2", "newhash"); err != nil {
		t.Fatalf("Reactivate failed: %v", err)
	}
	got, err = repo.GetByID(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.Active || got.DeactivatedAt != nil {
		t.Errorf("expected reactivated user, got %+v", got)
	}
	if got.Username != "alice2" || got.PasswordHash != "newhash" {
		t.Errorf("expected renamed user with new hash, got %+v", got)
	}

	// Old username is released, new one resolves.
	if _, err := repo.GetByUsername(ctx, "alice"); !IsNotFound(err) {
		t.Errorf("expected old username released, got %v", err)
	}
	if _, err := repo.GetByUsername(ctx, "alice2"); err != nil {
		t.Errorf("expected new username to resolve, got %v", err)
	}
}

// TestReactivateRenameCollision verifies rename uniqueness on reactivation.
func (s *RepositoryTestSuite) TestReactivateRenameCollision(t *testing.T) {
	repo := s.NewRepository(t)
	defer repo.Close()
	ctx := context.Background()

	if err := repo.Create(ctx, newTestUser("u-1", "alice", "13800000001")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(ctx, newTestUser("u-2", "bob", "13800000002")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.SetActive(ctx, "u-1", false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	if err := repo.Reactivate(ctx, "u-1", "bob", "h"); !IsDuplicate(err) {
		t.Fatalf("expected duplicate on rename collision, got %v", err)
	}
}

// TestConcurrentReads verifies parallel lookups are safe.
func (s *RepositoryTestSuite) TestConcurrentReads(t *testing.T) {
	repo := s.NewRepository(t)
	defer repo.Close()
	ctx := context.Background()

	if err := repo.Create(ctx, newTestUser("u-1", "alice", "13800000001")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := repo.GetByID(ctx, "u-1"); err != nil {
					t.Errorf("GetByID failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
