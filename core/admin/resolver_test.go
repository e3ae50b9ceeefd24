package admin_test

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/qisedu/udahili/core"
	"github.com/qisedu/udahili/core/admin"
	logsvc "github.com/qisedu/udahili/services/logger"
	dummydb "github.com/qisedu/udahili/storage/database/dummy"
	testutil "github.com/qisedu/udahili/tests"
)

func setup(t *testing.T, ttl time.Duration) (*admin.Resolver, *dummydb.AdminRepository) {
	t.Helper()

	db := dummydb.NewDB()
	repo := dummydb.NewAdminRepository(db)

	conf := *core.Conf
	conf.RoleCacheTTL = ttl
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	return admin.NewResolver(&conf, repo, logger), repo
}

func Test_resolver_Resolve(t *testing.T) {
	r, repo := setup(t, 5*time.Minute)
	ctx := context.Background()

	reviewer := testutil.CreateAdmin(t, repo, "Jane Awe", "jane@test.cd", admin.RoleReviewer, "Str0ng&Sauce", true)
	inactive := testutil.CreateAdmin(t, repo, "John Rey", "rey@test.cd", admin.RoleAdmin, "Str0ng&Sauce", false)

	p, err := r.Resolve(ctx, reviewer.UserID)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if p == nil || p.UserID != reviewer.UserID {
		t.Fatalf("Resolve() = %+v, want principal %v", p, reviewer.UserID)
	}
	if !p.CanReview() {
		t.Error("CanReview() = false, want true")
	}

	// a deactivated account resolves to no capability
	p, err = r.Resolve(ctx, inactive.UserID)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if p != nil {
		t.Errorf("Resolve() = %+v, want nil for inactive account", p)
	}

	// so does an unknown user id
	p, err = r.Resolve(ctx, "nope")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if p != nil {
		t.Errorf("Resolve() = %+v, want nil for unknown user", p)
	}
}

func Test_resolver_Resolve_cache(t *testing.T) {
	r, repo := setup(t, 5*time.Minute)
	ctx := context.Background()

	reviewer := testutil.CreateAdmin(t, repo, "Jane Awe", "jane@test.cd", admin.RoleReviewer, "Str0ng&Sauce", true)

	// positive resolution is memoized within the TTL
	for i := 0; i < 3; i++ {
		if _, err := r.Resolve(ctx, reviewer.UserID); err != nil {
			t.Fatalf("Resolve() failed: %v", err)
		}
	}
	if repo.Gets != 1 {
		t.Errorf("store lookups = %v, want 1", repo.Gets)
	}

	// so is a negative one: unknown ids do not hammer the store
	for i := 0; i < 3; i++ {
		if _, err := r.Resolve(ctx, "nope"); err != nil {
			t.Fatalf("Resolve() failed: %v", err)
		}
	}
	if repo.Gets != 2 {
		t.Errorf("store lookups = %v, want 2", repo.Gets)
	}
}

func Test_resolver_Resolve_expiry(t *testing.T) {
	r, repo := setup(t, 10*time.Millisecond)
	ctx := context.Background()

	reviewer := testutil.CreateAdmin(t, repo, "Jane Awe", "jane@test.cd", admin.RoleReviewer, "Str0ng&Sauce", true)

	if _, err := r.Resolve(ctx, reviewer.UserID); err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := r.Resolve(ctx, reviewer.UserID); err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if repo.Gets != 2 {
		t.Errorf("store lookups = %v, want 2 (expired entry must re-query)", repo.Gets)
	}
}

func Test_resolver_Invalidate(t *testing.T) {
	r, repo := setup(t, 5*time.Minute)
	ctx := context.Background()

	reviewer := testutil.CreateAdmin(t, repo, "Jane Awe", "jane@test.cd", admin.RoleReviewer, "Str0ng&Sauce", true)

	if _, err := r.Resolve(ctx, reviewer.UserID); err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	r.Invalidate(reviewer.UserID)
	if _, err := r.Resolve(ctx, reviewer.UserID); err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if repo.Gets != 2 {
		t.Errorf("store lookups = %v, want 2 (invalidation must force a re-query)", repo.Gets)
	}

	r.InvalidateAll()
	if _, err := r.Resolve(ctx, reviewer.UserID); err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if repo.Gets != 3 {
		t.Errorf("store lookups = %v, want 3", repo.Gets)
	}
}

// On a store outage the resolver fails closed: no capability, no caching,
// and recovery is immediate once the store is back.
func Test_resolver_Resolve_failClosed(t *testing.T) {
	r, repo := setup(t, 5*time.Minute)
	ctx := context.Background()

	reviewer := testutil.CreateAdmin(t, repo, "Jane Awe", "jane@test.cd", admin.RoleReviewer, "Str0ng&Sauce", true)

	storeErr := pkgerrors.New("store down")
	repo.FailGet = storeErr

	p, err := r.Resolve(ctx, reviewer.UserID)
	if pkgerrors.Cause(err) != storeErr {
		t.Fatalf("Resolve() error = %v, want %v", err, storeErr)
	}
	if p != nil {
		t.Errorf("Resolve() = %+v, want nil on store error", p)
	}

	// errors are not cached; the next call goes straight back to the store
	repo.FailGet = nil
	p, err = r.Resolve(ctx, reviewer.UserID)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if p == nil {
		t.Fatal("Resolve() = nil, want principal after recovery")
	}
	if repo.Gets != 2 {
		t.Errorf("store lookups = %v, want 2", repo.Gets)
	}
}
