package prompt

import (
	"fmt"

	"pet-care-tracker/internal/platform/apperr"
	"pet-care-tracker/internal/platform/httpclient"
)

// Classify marca un error de proveedor como upstream o upstream-timeout (reintentable).
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if httpclient.IsTimeout(err) {
		return fmt.Errorf("%w: %w", apperr.ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %w", apperr.ErrUpstream, err)
}
