package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sagarc03/snapvault"
)

const (
	ModeHeader = "header"
	ModeJWT    = "jwt"

	DefaultHeader = "X-User-Id"
)

var (
	// ErrNoIdentity is returned when the request carries no identity at all.
	ErrNoIdentity = fmt.Errorf("%w: no identity", snapvault.ErrUnauthorized)
	// ErrInvalidToken is returned when a bearer token fails verification.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", snapvault.ErrUnauthorized)
)

// Resolver extracts the caller's user ID from a request.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

// HeaderResolver trusts a header set by an authenticating proxy.
type HeaderResolver struct {
	Header string
}

func NewHeaderResolver(header string) *HeaderResolver {
	if header == "" {
		header = DefaultHeader
	}
	return &HeaderResolver{Header: header}
}

func (h *HeaderResolver) Resolve(r *http.Request) (string, error) {
	userID := strings.TrimSpace(r.Header.Get(h.Header))
	if userID == "" {
		return "", ErrNoIdentity
	}
	return userID, nil
}

// JWTResolver verifies an HS256 bearer token and uses its subject as the
// user ID.
type JWTResolver struct {
	secret []byte
	opts   []jwt.ParserOption
}

func NewJWTResolver(secret, issuer, audience string) (*JWTResolver, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	return &JWTResolver{secret: []byte(secret), opts: opts}, nil
}

func (j *JWTResolver) Resolve(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrNoIdentity
	}

	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	}, j.opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// NewResolver builds the resolver for mode.
func NewResolver(mode, header, secret, issuer, audience string) (Resolver, error) {
	switch mode {
	case "", ModeHeader:
		return NewHeaderResolver(header), nil
	case ModeJWT:
		return NewJWTResolver(secret, issuer, audience)
	default:
		return nil, fmt.Errorf("unsupported identity mode: %s", mode)
	}
}
