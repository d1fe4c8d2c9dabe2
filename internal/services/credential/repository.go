package credential

import (
	"context"
	"errors"
	"time"

	"github.com/sparknote/ai-gateway/internal/models"
)

var (
	// ErrKeyNotFound is returned when an operation references a key id that
	// does not exist.
	ErrKeyNotFound = errors.New("provider key not found")
	// ErrActivationConflict is returned when an activation loses the race
	// against a concurrent activation for the same service. The service is
	// left with the winner's key active; the caller may retry.
	ErrActivationConflict = errors.New("activation conflict: another key for the service is already active")
)

// Repository abstracts the persistent store behind the credential service so
// any backend (relational, in-memory for tests) can satisfy it.
type Repository interface {
	Create(ctx context.Context, key *models.ProviderKey) error
	GetByID(ctx context.Context, id string) (*models.ProviderKey, error)
	List(ctx context.Context, limit, offset int) ([]models.ProviderKey, int64, error)
	Delete(ctx context.Context, id string) error

	// FindActiveKey returns the active key for a service, newest first when
	// the store ever holds more than one (it should not), or (nil, nil) when
	// none is active.
	FindActiveKey(ctx context.Context, service models.ProviderService) (*models.ProviderKey, error)

	// DeactivateAllForService clears the active flag on every key of a
	// service. Must be an atomic store-level update.
	DeactivateAllForService(ctx context.Context, service models.ProviderService) error

	// ActivateByID sets the active flag on one key, refusing when a sibling
	// key of the same service is already active (ErrActivationConflict).
	// Must be an atomic store-level update so that two racing activations
	// cannot both win, even across process instances.
	ActivateByID(ctx context.Context, id string, service models.ProviderService) error

	// TouchLastUsed stamps the last-used timestamp on a key.
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
}
