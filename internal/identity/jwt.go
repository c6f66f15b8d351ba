// Package identity verifies the bearer tokens issued by the campus identity
// provider and resolves them into a principal.
package identity

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "placement/pkg/domain-errors"
	"placement/pkg/platform/middleware/auth"
	pstrings "placement/pkg/platform/strings"
)

// Claims are the token claims the portal relies on.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 tokens against the configured issuer and audience.
type Verifier struct {
	signingKey []byte
	issuer     string
	audience   string
	now        func() time.Time
}

func NewVerifier(signingKey, issuer, audience string) *Verifier {
	return &Verifier{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		now:        time.Now,
	}
}

// Issue signs a token for email. Used by local tooling and tests.
func (v *Verifier) Issue(email, name string, expiresIn time.Duration) (string, error) {
	now := v.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    v.issuer,
			Audience:  []string{v.audience},
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(v.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// Verify implements auth.TokenVerifier.
func (v *Verifier) Verify(tokenString string) (*auth.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return v.signingKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	email := pstrings.NormalizeEmail(claims.Email)
	if email == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has no email claim")
	}
	return &auth.Principal{Email: email, Name: strings.TrimSpace(claims.Name)}, nil
}
