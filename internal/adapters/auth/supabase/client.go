package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zeebo/errs"

	"pet-care-tracker/internal/platform/apperr"
	"pet-care-tracker/internal/platform/httpclient"
	"pet-care-tracker/internal/ports/auth"
)

// Error es la clase de errores del adapter de auth.
var Error = errs.Class("supabase")

var (
	ErrNotConfigured = errors.New("supabase client not configured")
	ErrUnauthorized  = fmt.Errorf("supabase: %w", apperr.ErrUnauthorized)
	ErrUpstream      = fmt.Errorf("supabase: %w", apperr.ErrUpstream)
)

// Config del proyecto Supabase. URL y AnonKey vienen de SUPABASE_URL / SUPABASE_ANON_KEY.
type Config struct {
	URL     string
	AnonKey string

	// JWTSecret habilita la verificación local HS256; vacío => todo va contra /auth/v1/user.
	JWTSecret string

	Timeout time.Duration
}

// Client consulta el endpoint de usuario del proveedor.
type Client struct {
	http    *httpclient.Client
	anonKey string
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" || strings.TrimSpace(cfg.AnonKey) == "" {
		return nil, ErrNotConfigured
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	hc, err := httpclient.NewWithBaseURL(base, timeout)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &Client{http: hc, anonKey: strings.TrimSpace(cfg.AnonKey)}, nil
}

type userResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName string `json:"full_name"`
		Name     string `json:"name"`
	} `json:"user_metadata"`
}

// GetUser resuelve el token contra GET /auth/v1/user.
func (c *Client) GetUser(ctx context.Context, token string) (auth.Claims, error) {
	if c == nil || c.http == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	var out userResponse
	err := c.http.DoJSON(ctx, http.MethodGet, "/auth/v1/user", map[string]string{
		"apikey":        c.anonKey,
		"Authorization": "Bearer " + token,
	}, nil, &out)
	if err != nil {
		var he *httpclient.HTTPError
		if errors.As(err, &he) && (he.StatusCode == http.StatusUnauthorized || he.StatusCode == http.StatusForbidden) {
			return auth.Claims{}, ErrUnauthorized
		}
		return auth.Claims{}, Error.Wrap(fmt.Errorf("%w: %w", ErrUpstream, err))
	}

	out.ID = strings.TrimSpace(out.ID)
	if out.ID == "" {
		return auth.Claims{}, Error.New("user response missing id")
	}

	name := out.UserMetadata.FullName
	if name == "" {
		name = out.UserMetadata.Name
	}
	return auth.Claims{
		UserID: out.ID,
		Email:  strings.TrimSpace(out.Email),
		Name:   strings.TrimSpace(name),
	}, nil
}
