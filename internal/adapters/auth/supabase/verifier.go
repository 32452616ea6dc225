package supabase

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"pet-care-tracker/internal/platform/apperr"
	"pet-care-tracker/internal/ports/auth"
)

var ErrTokenEmpty = fmt.Errorf("token is empty: %w", apperr.ErrUnauthorized)

type tokenClaims struct {
	Email        string `json:"email"`
	UserMetadata struct {
		FullName string `json:"full_name"`
		Name     string `json:"name"`
	} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// Verifier implementa auth.AuthVerifier.
// Tokens HS256 se validan localmente con el secreto del proyecto; el resto
// (claves asimétricas o sin secreto configurado) se resuelve con el Client.
type Verifier struct {
	secret []byte
	client *Client
	parser *jwt.Parser
}

// NewVerifier acepta client nil si hay secreto, y secreto vacío si hay client.
func NewVerifier(secret string, client *Client) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" && client == nil {
		return nil, ErrNotConfigured
	}
	return &Verifier{
		secret: []byte(secret),
		client: client,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()),
	}, nil
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	if len(v.secret) == 0 || !isHS256(token) {
		if v.client == nil {
			return auth.Claims{}, ErrUnauthorized
		}
		return v.client.GetUser(ctx, token)
	}

	var c tokenClaims
	_, err := v.parser.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	uid := strings.TrimSpace(c.Subject)
	if uid == "" {
		return auth.Claims{}, fmt.Errorf("%w: token missing sub", ErrUnauthorized)
	}
	name := c.UserMetadata.FullName
	if name == "" {
		name = c.UserMetadata.Name
	}
	return auth.Claims{
		UserID: uid,
		Email:  strings.TrimSpace(c.Email),
		Name:   strings.TrimSpace(name),
	}, nil
}

// isHS256 mira solo el header; la firma se valida después.
func isHS256(token string) bool {
	t, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	return t.Method.Alg() == jwt.SigningMethodHS256.Alg()
}
