package applicant

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	pkgerrors "github.com/pkg/errors"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/qisedu/udahili/core"
)

var (
	// errors
	ErrNotFound           = errors.New("applicant not found")
	ErrRefExists          = errors.New("an applicant with this reference already exists")
	ErrReferenceExhausted = errors.New("could not issue a unique reference, please try again later")
)

// maxIssueAttempts bounds the generate-check-commit loop of Issue.
const maxIssueAttempts = 5

const reasonNotFound = "not_found"

type (
	Repository interface {
		// CreateApplicant must fail with ErrRefExists when the reference
		// column's unique index rejects the row. The index is the actual
		// uniqueness authority; Issue's pre-check is only an optimization.
		CreateApplicant(ctx context.Context, apl Applicant) (Applicant, error)
		GetApplicantByID(ctx context.Context, id string) (Applicant, error)
		GetApplicantByRef(ctx context.Context, ref string) (Applicant, error)
		UpdateApplicant(ctx context.Context, apl Applicant) (Applicant, error)
	}

	Service struct {
		repo Repository
		log  core.Logger

		// refCache holds recently issued/validated references for resume flows.
		// It is advisory only: entries expire, and an absent entry is never
		// treated as proof of invalidity.
		refCache *gocache.Cache
		cacheTTL time.Duration
	}
)

func NewService(conf *core.Config, repo Repository, logger core.Logger) *Service {
	if conf.ReferencePrefix != "" {
		SetRefPrefix(conf.ReferencePrefix)
	}
	return &Service{
		repo:     repo,
		log:      logger,
		refCache: gocache.New(conf.ReferenceCacheTTL, 2*conf.ReferenceCacheTTL),
		cacheTTL: conf.ReferenceCacheTTL,
	}
}

// Issue generates a unique reference code and commits a placeholder Applicant
// row carrying it. Candidates colliding with an existing row are regenerated,
// up to maxIssueAttempts; a commit racing a concurrent writer into the unique
// index consumes an attempt the same way instead of being surfaced raw.
func (svc *Service) Issue(ctx context.Context) (Applicant, error) {
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		ref := GenerateRef()

		_, err := svc.repo.GetApplicantByRef(ctx, ref)
		if err == nil {
			continue // collision, regenerate
		}
		if pkgerrors.Cause(err) != ErrNotFound {
			return Applicant{}, pkgerrors.Wrap(err, "checking reference")
		}

		now := time.Now().UTC()
		apl := Applicant{
			ID:        uuid.New().String(),
			Reference: null.StringFrom(ref),
			CreatedAt: now,
			UpdatedAt: now,
		}
		apl, err = svc.repo.CreateApplicant(ctx, apl)
		if err != nil {
			if pkgerrors.Cause(err) == ErrRefExists {
				continue // lost the race to a concurrent writer, regenerate
			}
			return Applicant{}, pkgerrors.Wrap(err, "committing reference")
		}

		sum := apl.Summary()
		svc.refCache.Set(ref, &sum, svc.cacheTTL)
		return apl, nil
	}
	return Applicant{}, ErrReferenceExhausted
}

// Validate normalizes and grammar-checks the code, then resolves it to an
// applicant summary. The local cache only short-circuits the store lookup;
// the store remains authoritative and an expired entry falls through to it.
func (svc *Service) Validate(ctx context.Context, code string) (ValidationResult, error) {
	code = NormalizeRef(code)
	if !IsWellFormedRef(code) {
		return ValidationResult{Valid: false, Reason: "malformed"}, nil
	}

	if v, ok := svc.refCache.Get(code); ok {
		if sum, ok := v.(*Summary); ok {
			return ValidationResult{Valid: true, Applicant: sum}, nil
		}
	}

	apl, err := svc.repo.GetApplicantByRef(ctx, code)
	if err != nil {
		if pkgerrors.Cause(err) == ErrNotFound {
			return ValidationResult{Valid: false, Reason: reasonNotFound}, nil
		}
		return ValidationResult{}, pkgerrors.Wrap(err, "resolving reference")
	}

	sum := apl.Summary()
	svc.refCache.Set(code, &sum, svc.cacheTTL)
	return ValidationResult{Valid: true, Applicant: &sum}, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Applicant, error) {
	return svc.repo.GetApplicantByID(ctx, id)
}

func (svc *Service) GetByRef(ctx context.Context, ref string) (Applicant, error) {
	return svc.repo.GetApplicantByRef(ctx, NormalizeRef(ref))
}

// UpdateProfile fills identity fields on an existing (possibly placeholder) row.
// The reference is never touched here; it is immutable once issued.
func (svc *Service) UpdateProfile(ctx context.Context, id string, up UpdateProfile) (Applicant, error) {
	apl, err := svc.repo.GetApplicantByID(ctx, id)
	if err != nil {
		return Applicant{}, err
	}

	apl.FirstName = up.FirstName
	apl.LastName = up.LastName
	apl.Email = up.Email
	apl.Phone = up.Phone
	apl.Citizenship = up.Citizenship
	apl.VisaStatus = up.VisaStatus
	apl.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateApplicant(ctx, apl)
}
