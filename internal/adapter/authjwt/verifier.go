// Package authjwt implements the token-verification collaborator with
// locally validated HMAC JWTs issued by the account service.
package authjwt

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chatwire/realtime-service/internal/service"
)

// Verifier validates HS256 bearer tokens. The subject claim carries the
// user identity.
type Verifier struct {
	secret []byte
	issuer string
	parser *jwt.Parser
}

var _ service.TokenVerifier = (*Verifier)(nil)

// New builds a verifier for the given shared secret. issuer is optional;
// when set, tokens from any other issuer are rejected.
func New(secret, issuer string) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &Verifier{
		secret: []byte(secret),
		issuer: issuer,
		parser: jwt.NewParser(opts...),
	}
}

// Verify checks signature and registered claims and returns the subject.
// Every validation failure maps to service.ErrInvalidToken; the detail stays
// in the wrapped error for logs, never for clients.
func (v *Verifier) Verify(_ context.Context, token string) (string, error) {
	parsed, err := v.parser.Parse(token, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", service.ErrInvalidToken, err)
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: missing subject claim", service.ErrInvalidToken)
	}
	return sub, nil
}
