package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"authgate/internal/auth/models"
	dErrors "authgate/pkg/domain-errors"
)

// TokenType discriminates access from refresh tokens inside the signed claims
// so one can never be replayed as the other.
type TokenType string

const (
	TypeAccess  TokenType = "access"
	TypeRefresh TokenType = "refresh"
)

// Claims are the JWT claims carried by both token kinds. Subject is always
// the username: both login and refresh mint against it, so no lookup is
// needed to resolve who a token is for.
type Claims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// Clock abstracts time.Now for expiry tests.
type Clock func() time.Time

// Issuer creates and validates signed access/refresh tokens and implements
// the refresh rotation protocol.
type Issuer struct {
	signingKey []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      Clock
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) Option {
	return func(i *Issuer) {
		if clock != nil {
			i.clock = clock
		}
	}
}

func NewIssuer(signingKey string, issuer string, accessTTL, refreshTTL time.Duration, opts ...Option) *Issuer {
	iss := &Issuer{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		clock:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(iss)
		}
	}
	return iss
}

func (i *Issuer) IssueAccessToken(subject string) (string, error) {
	return i.issue(subject, TypeAccess, i.accessTTL)
}

func (i *Issuer) IssueRefreshToken(subject string) (string, error) {
	return i.issue(subject, TypeRefresh, i.refreshTTL)
}

// IssuePair mints a fresh access+refresh pair bound to subject.
func (i *Issuer) IssuePair(subject string) (*models.TokenPair, error) {
	access, err := i.IssueAccessToken(subject)
	if err != nil {
		return nil, err
	}
	refresh, err := i.IssueRefreshToken(subject)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *Issuer) issue(subject string, typ TokenType, ttl time.Duration) (string, error) {
	now := i.clock()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		TokenType: string(typ),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    i.issuer,
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(i.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signedToken, nil
}

// Verify validates a token's signature, expiry, and type discriminator.
// All failure classes collapse to an unauthorized domain error; the specific
// cause is kept in messages for logs, not for routing decisions.
func (i *Issuer) Verify(tokenString string, expected TokenType) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return i.signingKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return i.clock() }))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	if claims.TokenType != string(expected) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "wrong token type")
	}

	return claims, nil
}

// Refresh implements the two-source rotation protocol: try the refresh token
// from the transport location first, then fall back to the body-supplied one.
// Both attempts enforce the refresh type. The final error is always the same
// generic unauthorized so callers cannot tell which validation path failed.
// Returns the new pair plus the subject it was minted for.
func (i *Issuer) Refresh(headerToken, bodyToken string) (*models.TokenPair, string, error) {
	var claims *Claims

	if headerToken != "" {
		if c, err := i.Verify(headerToken, TypeRefresh); err == nil {
			claims = c
		}
	}
	if claims == nil && bodyToken != "" {
		if c, err := i.Verify(bodyToken, TypeRefresh); err == nil {
			claims = c
		}
	}
	if claims == nil {
		return nil, "", dErrors.New(dErrors.CodeUnauthorized, "invalid refresh token")
	}

	pair, err := i.IssuePair(claims.Subject)
	if err != nil {
		return nil, "", err
	}
	return pair, claims.Subject, nil
}
