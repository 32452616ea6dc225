package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// ErrURLNotAllowed: la URL no es https o apunta a una red interna.
var ErrURLNotAllowed = errors.New("httpclient: url not allowed")

// CheckPublicURL valida una URL que viene del usuario antes de descargarla desde el server.
func CheckPublicURL(ctx context.Context, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrURLNotAllowed, err)
	}
	if u.Scheme != "https" || u.Hostname() == "" || u.User != nil {
		return fmt.Errorf("%w: %q", ErrURLNotAllowed, raw)
	}

	host := u.Hostname()
	if addr, err := netip.ParseAddr(host); err == nil {
		if !publicAddr(addr) {
			return fmt.Errorf("%w: %s", ErrURLNotAllowed, host)
		}
		return nil
	}

	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %w", ErrURLNotAllowed, host, err)
	}
	for _, a := range addrs {
		if !publicAddr(a) {
			return fmt.Errorf("%w: %s resolves to %s", ErrURLNotAllowed, host, a)
		}
	}
	return nil
}

// NewPublicOnly crea un Client cuyo dialer rechaza IPs internas; cubre el DNS rebinding
// entre CheckPublicURL y la conexión real.
func NewPublicOnly(timeout time.Duration) *Client {
	c := New(timeout)
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: func(_, address string, _ syscall.RawConn) error {
			ap, err := netip.ParseAddrPort(address)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrURLNotAllowed, address)
			}
			if !publicAddr(ap.Addr()) {
				return fmt.Errorf("%w: %s", ErrURLNotAllowed, ap.Addr())
			}
			return nil
		},
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.Proxy = nil
	tr.DialContext = dialer.DialContext
	c.HTTP.Transport = tr
	c.HTTP.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return errors.New("httpclient: too many redirects")
		}
		if req.URL.Scheme != "https" {
			return fmt.Errorf("%w: redirect to %s", ErrURLNotAllowed, req.URL.Scheme)
		}
		return nil
	}
	return c
}

func publicAddr(a netip.Addr) bool {
	a = a.Unmap()
	return a.IsValid() &&
		!a.IsLoopback() &&
		!a.IsPrivate() &&
		!a.IsLinkLocalUnicast() &&
		!a.IsLinkLocalMulticast() &&
		!a.IsInterfaceLocalMulticast() &&
		!a.IsMulticast() &&
		!a.IsUnspecified() &&
		!cgnat.Contains(a)
}

// 100.64.0.0/10 (carrier-grade NAT) no lo cubre IsPrivate.
var cgnat = netip.MustParsePrefix("100.64.0.0/10")
