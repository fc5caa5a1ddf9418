package report

import (
	"context"
	"sync"

	"github.com/itsatony/go-cuserr"
)

const (
	errCodeReport  = "TESTGEN_REPORT"
	errCodeStorage = "TESTGEN_STORAGE"

	errMsgRunNotFound     = "run not found"
	errMsgDriverNotFound  = "artifact store driver not found"
	errMsgNilDriver       = "nil artifact store driver"
	errMsgDuplicateDriver = "artifact store driver already registered"

	metaKeyRunID  = "run_id"
	metaKeyDriver = "driver"
)

// ArtifactStore is the interface for pluggable report persistence. Mirrors
// the registered-driver storage pattern: a name, a DSN, and an Open call.
type ArtifactStore interface {
	// Save persists a report under runID, the caller-chosen identifier for
	// this run (e.g. a timestamp or commit SHA).
	Save(ctx context.Context, runID string, r *Report) error

	// Load retrieves a previously saved report by runID.
	// Returns a not-found error (see NewRunNotFoundError) if runID is unknown.
	Load(ctx context.Context, runID string) (*Report, error)

	// Latest returns the most recently saved report for targetPackage, or
	// a not-found error (see NewRunNotFoundError) if none exists.
	Latest(ctx context.Context, targetPackage string) (*Report, error)

	// Close releases any resources held by the store.
	Close() error
}

// ArtifactStoreDriver is a factory for ArtifactStore instances. Drivers
// register themselves from an init() function.
type ArtifactStoreDriver interface {
	Open(connectionString string) (ArtifactStore, error)
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]ArtifactStoreDriver)
)

// RegisterArtifactDriver registers a driver by name. Panics if name is
// already registered — a duplicate registration is a programming error,
// not a runtime condition to recover from.
func RegisterArtifactDriver(name string, driver ArtifactStoreDriver) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if driver == nil {
		panic(cuserr.NewValidationError(errCodeStorage, errMsgNilDriver).WithMetadata(metaKeyDriver, name))
	}
	if _, exists := drivers[name]; exists {
		panic(cuserr.NewValidationError(errCodeStorage, errMsgDuplicateDriver).WithMetadata(metaKeyDriver, name))
	}
	drivers[name] = driver
}

// OpenArtifactStore opens a store using the named driver.
func OpenArtifactStore(driverName, connectionString string) (ArtifactStore, error) {
	driversMu.RLock()
	driver, ok := drivers[driverName]
	driversMu.RUnlock()

	if !ok {
		return nil, NewDriverNotFoundError(driverName)
	}
	return driver.Open(connectionString)
}

// ListArtifactDrivers returns the names of all registered drivers.
func ListArtifactDrivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	return names
}

// NewRunNotFoundError builds the not-found error for a missing run id.
func NewRunNotFoundError(runID string) error {
	return cuserr.NewNotFoundError(errCodeReport, errMsgRunNotFound).WithMetadata(metaKeyRunID, runID)
}

// NewDriverNotFoundError reports an unregistered driver name.
func NewDriverNotFoundError(name string) error {
	return cuserr.NewNotFoundError(errCodeStorage, errMsgDriverNotFound).WithMetadata(metaKeyDriver, name)
}
