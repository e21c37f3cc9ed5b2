package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for domain operations
var (
	// ErrNetwork indicates the remote catalog rejected the call or was unreachable
	ErrNetwork = errors.New("network failure")

	// ErrOfflineNoCache indicates the device is offline and nothing is cached for the resource
	ErrOfflineNoCache = errors.New("offline and no cached data available")

	// ErrNotFound indicates the requested movie does not exist in the catalog
	ErrNotFound = errors.New("movie not found")

	// ErrStorage indicates the persistent key-value store failed a read or write
	ErrStorage = errors.New("storage failure")

	// ErrCircuitOpen indicates the catalog client is shedding calls after repeated failures
	ErrCircuitOpen = errors.New("catalog circuit open")
)

// CatalogError is a failed call to the remote catalog.
// StatusCode is zero when no HTTP response was received.
type CatalogError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *CatalogError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// Is makes every CatalogError match ErrNetwork, and 404s match ErrNotFound.
func (e *CatalogError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return true
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}
