package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ThrottledTransport aplica el rate.Limiter antes de cada request.
// Sirve para SDKs que solo aceptan un *http.Client.
type ThrottledTransport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter
}

func (t *ThrottledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		ctx := req.Context()
		if err := t.Limiter.Wait(ctx); err != nil {
			// Wait falla antes del deadline si ya sabe que no llega a tiempo.
			if _, ok := ctx.Deadline(); ok {
				return nil, fmt.Errorf("%w: rate limit wait: %w", ErrTimeout, err)
			}
			return nil, fmt.Errorf("httpclient: rate limit wait: %w", err)
		}
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// NewThrottledHTTP arma el *http.Client que se le pasa a los SDKs de IA (rps <= 0 sin throttling).
func NewThrottledHTTP(timeout time.Duration, rps float64) *http.Client {
	c := New(timeout).WithRateLimit(rps, 1)
	c.HTTP.Transport = &ThrottledTransport{Limiter: c.Limiter}
	return c.HTTP
}

// IsTimeout reporta deadlines de contexto, timeouts de red o del http.Client.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
