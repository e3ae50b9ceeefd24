package admin

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	pkgerrors "github.com/pkg/errors"

	"github.com/qisedu/udahili/core"
)

var (
	// errors
	ErrNotFound    = errors.New("admin principal not found")
	ErrEmailExists = errors.New("an admin principal with this email already exists")
)

type (
	Repository interface {
		// CreatePrincipal must fail with ErrEmailExists on a duplicate email.
		CreatePrincipal(ctx context.Context, p Principal) (Principal, error)
		GetPrincipalByUserID(ctx context.Context, userID string) (Principal, error)
		GetPrincipalByEmail(ctx context.Context, email string) (Principal, error)
		SetPrincipalLastLogin(ctx context.Context, userID string, t time.Time) (Principal, error)
	}

	// resolution is what gets cached per user id, positive or negative.
	resolution struct {
		principal *Principal
	}

	// Resolver decides admin capability for a session principal, memoizing
	// the authoritative store lookup for a bounded interval. The cache is
	// process-local; in a multi-instance deployment instances may disagree
	// for up to the TTL after a role change.
	Resolver struct {
		repo  Repository
		log   core.Logger
		cache *gocache.Cache
		ttl   time.Duration
	}
)

func NewResolver(conf *core.Config, repo Repository, logger core.Logger) *Resolver {
	return &Resolver{
		repo:  repo,
		log:   logger,
		cache: gocache.New(conf.RoleCacheTTL, 2*conf.RoleCacheTTL),
		ttl:   conf.RoleCacheTTL,
	}
}

// Resolve returns the active administrative principal for userID, or nil when
// there is none. Both outcomes are cached for the TTL, measured from the time
// of the fill. On a store error the resolver fails closed: no capability is
// granted and nothing is cached, so recovery is immediate.
func (r *Resolver) Resolve(ctx context.Context, userID string) (*Principal, error) {
	if v, ok := r.cache.Get(userID); ok {
		if res, ok := v.(resolution); ok {
			return res.principal, nil
		}
	}

	p, err := r.repo.GetPrincipalByUserID(ctx, userID)
	if err != nil {
		if pkgerrors.Cause(err) == ErrNotFound {
			r.cache.Set(userID, resolution{}, r.ttl)
			return nil, nil
		}
		r.log.Error("resolving admin principal", err, map[string]interface{}{"user_id": userID})
		return nil, pkgerrors.Wrap(err, "resolving admin principal")
	}
	if !p.IsActive {
		r.cache.Set(userID, resolution{}, r.ttl)
		return nil, nil
	}

	r.cache.Set(userID, resolution{principal: &p}, r.ttl)
	return &p, nil
}

// Invalidate clears the cached resolution for one user immediately.
// It must be called on sign-out and on any role or active-flag change.
func (r *Resolver) Invalidate(userID string) {
	r.cache.Delete(userID)
}

// InvalidateAll clears every cached resolution immediately.
func (r *Resolver) InvalidateAll() {
	r.cache.Flush()
}
