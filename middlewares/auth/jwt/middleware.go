// Package jwt authenticates requests carrying a Bearer token, attaching the
// authenticated principal to the request for downstream middleware and the
// view. Invalid or missing tokens short-circuit with 401.
package jwt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/strata-go/strata"
	"github.com/strata-go/strata/internal/errs"
)

// PrincipalKey is the request extension slot holding the authenticated
// subject once a token validates.
const PrincipalKey = "auth_principal"

// MiddlewareBuilder configures the validator.
type MiddlewareBuilder struct {
	secret    []byte
	skipPaths []*regexp.Regexp
}

// InitMiddlewareBuilder compiles the skip patterns and returns a builder.
// Requests whose path matches any pattern bypass validation.
func InitMiddlewareBuilder(secret []byte, skipPatterns []string) (*MiddlewareBuilder, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("jwt: empty secret")
	}
	paths := make([]*regexp.Regexp, 0, len(skipPatterns))
	for _, pattern := range skipPatterns {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("jwt: compiling skip pattern %q: %w", pattern, err)
		}
		paths = append(paths, compiled)
	}
	return &MiddlewareBuilder{secret: secret, skipPaths: paths}, nil
}

// Build produces the middleware unit.
func (b *MiddlewareBuilder) Build() *Middleware {
	return &Middleware{secret: b.secret, skipPaths: b.skipPaths}
}

// Middleware validates tokens in the request hook.
type Middleware struct {
	secret    []byte
	skipPaths []*regexp.Regexp
}

func (m *Middleware) ProcessRequest(req *strata.Request) (*strata.Response, error) {
	for _, pattern := range m.skipPaths {
		if pattern.MatchString(req.Path) {
			return nil, nil
		}
	}

	subject, err := m.validate(req)
	if err != nil {
		return m.unauthorized(), nil
	}
	req.Set(PrincipalKey, subject)
	return nil, nil
}

func (m *Middleware) validate(req *strata.Request) (string, error) {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("missing auth token")
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("invalid auth header format")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	return claims.Subject, nil
}

func (m *Middleware) unauthorized() *strata.Response {
	apiErr := errs.NewAuthError("authentication required")
	resp := strata.New(apiErr.Code, apiErr.ToJSON())
	resp.Header.Set("Content-Type", "application/json")
	resp.Header.Set("WWW-Authenticate", `Bearer realm="restricted"`)
	return resp
}

// Principal returns the authenticated subject attached to the request, or "".
func Principal(req *strata.Request) string {
	return req.StringValue(PrincipalKey)
}
