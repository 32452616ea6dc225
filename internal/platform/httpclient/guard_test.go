package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCheckPublicURL(t *testing.T) {
	rejected := []string{
		"http://8.8.8.8/dog.jpg",
		"https://127.0.0.1/dog.jpg",
		"https://localhost/dog.jpg",
		"https://[::1]/dog.jpg",
		"https://10.0.0.5/dog.jpg",
		"https://192.168.1.1/dog.jpg",
		"https://169.254.169.254/latest/meta-data",
		"https://100.64.0.1/dog.jpg",
		"https://[::ffff:127.0.0.1]/dog.jpg",
		"https://user:pw@8.8.8.8/dog.jpg",
		"file:///etc/passwd",
		"://bad",
	}
	for _, raw := range rejected {
		require.ErrorIs(t, CheckPublicURL(context.Background(), raw), ErrURLNotAllowed, raw)
	}

	require.NoError(t, CheckPublicURL(context.Background(), "https://8.8.8.8/dog.jpg"))
}

func TestNewPublicOnly_RefusesLoopbackDial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("secret"))
	}))
	defer srv.Close()

	_, _, err := NewPublicOnly(time.Second).GetBytes(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrURLNotAllowed)
}
