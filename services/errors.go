package services

import (
	"errors"
	"fmt"
)

// Sentinel errors of the ingestion pipeline. Controllers map these onto HTTP
// statuses; everything else is a generic 500.
var (
	ErrInvalidFormat    = errors.New("invalid format")
	ErrNotFound         = errors.New("not found")
	ErrConfiguration    = errors.New("configuration error")
	ErrProvisioning     = errors.New("provisioning error")
	ErrCredentialConfig = errors.New("credential configuration error") // service key lacks admin rights
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidFormat}, args...)...)
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}
