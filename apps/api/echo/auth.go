package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/qisedu/udahili/core"
	"github.com/qisedu/udahili/core/admin"
)

var (
	// appJWTConfig is the default JWT auth middleware config.
	appJWTConfig = middleware.JWTConfig{
		SigningKey:    core.Conf.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "principalToken",
		Claims:        new(Claims),
	}
)

// Claims represents the authorization claims transmitted via a JWT.
// The Role claim is strictly advisory: the role resolver's authoritative
// record is what grants admin capability (see reviewerMiddleware).
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
}

func GetPrincipalClaims(p admin.Principal, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   p.UserID,
			Audience:  "Admissions",
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Name:         p.Name,
		Email:        p.Email,
		Role:         p.Role,
	}
}

func authenticate(ctx echo.Context, email, pwd string, svc *admin.Service) (*Claims, error) {
	p, err := svc.GetByEmail(ctx.Request().Context(), email)
	if err != nil {
		if errors.Cause(err) == admin.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding admin principal by email")
	}
	if err = p.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	if !p.IsActive {
		return nil, errAccountDeactivated
	}
	p, err = svc.SetLastLogin(ctx.Request().Context(), p)
	if err != nil {
		return nil, errors.Wrap(err, "setting lastLogin")
	}
	return GetPrincipalClaims(p), nil
}

// GenerateToken generates a signed JWT token string representing the principal Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func refreshToken(ctx echo.Context, resolver *admin.Resolver) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	// the authoritative record decides whether the principal is still active
	p, err := resolver.Resolve(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return "", errors.Wrap(err, "resolving principal")
	}
	if p == nil {
		return "", errAccountDeactivated
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(core.Conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	newClaims := GetPrincipalClaims(*p, claims.OrigIssuedAt)
	token, err := GenerateToken(newClaims)
	return token, errors.Wrap(err, "generating token")
}
