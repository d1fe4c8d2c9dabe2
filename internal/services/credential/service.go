package credential

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sparknote/ai-gateway/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Service owns ProviderKey records and answers "what is the active key for
// service X". It is the only writer of the IsActive flag.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req *models.ProviderKeyCreateRequest) (*models.ProviderKeyResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.NewValidationError("name is required", nil)
	}
	service, err := models.ParseProviderService(req.Service)
	if err != nil {
		return nil, models.NewValidationError(err.Error(), nil)
	}
	if req.Secret == "" {
		return nil, models.NewValidationError("secret is required", nil)
	}

	// Keys start inactive; an administrator activates them explicitly.
	key := &models.ProviderKey{
		Name:    name,
		Service: service,
		Secret:  req.Secret,
	}

	if err := s.repo.Create(ctx, key); err != nil {
		return nil, models.NewInternalError("failed to create provider key", err)
	}

	fiberlog.Infof("provider key created: %s (%s)", key.ID, key.Service)
	resp := key.ToResponse()
	return &resp, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]models.ProviderKeyResponse, int64, error) {
	keys, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, models.NewInternalError("failed to list provider keys", err)
	}

	responses := make([]models.ProviderKeyResponse, len(keys))
	for i, k := range keys {
		responses[i] = k.ToResponse()
	}
	return responses, total, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.ProviderKeyResponse, error) {
	key, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, models.NewNotFoundError("provider key not found")
		}
		return nil, models.NewInternalError("failed to get provider key", err)
	}
	resp := key.ToResponse()
	return &resp, nil
}

// RevealSecret returns the stored secret for explicit copy-to-clipboard use.
// The secret is never logged.
func (s *Service) RevealSecret(ctx context.Context, id string) (*models.ProviderKeySecretResponse, error) {
	key, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, models.NewNotFoundError("provider key not found")
		}
		return nil, models.NewInternalError("failed to get provider key", err)
	}
	return &models.ProviderKeySecretResponse{ID: key.ID, Secret: key.Secret}, nil
}

// Delete removes a key unconditionally. Deleting the active key leaves the
// service with no active key; no sibling is promoted.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return models.NewNotFoundError("provider key not found")
		}
		return models.NewInternalError("failed to delete provider key", err)
	}
	fiberlog.Infof("provider key deleted: %s", id)
	return nil
}

// Activate makes one key the active credential for its service. The
// deactivate step always precedes the activate step; if activation then
// fails, the service is deliberately left with no active key rather than
// ever reaching two.
func (s *Service) Activate(ctx context.Context, id string) error {
	key, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return models.NewNotFoundError("provider key not found")
		}
		return models.NewInternalError("failed to load provider key", err)
	}

	if err := s.repo.DeactivateAllForService(ctx, key.Service); err != nil {
		return models.NewInternalError("failed to deactivate sibling keys", err)
	}

	if err := s.repo.ActivateByID(ctx, id, key.Service); err != nil {
		if errors.Is(err, ErrActivationConflict) {
			return models.NewConflictError("a concurrent activation won for service " + string(key.Service))
		}
		if errors.Is(err, ErrKeyNotFound) {
			return models.NewNotFoundError("provider key not found")
		}
		return models.NewInternalError("failed to activate provider key", err)
	}

	fiberlog.Infof("provider key activated: %s (%s)", id, key.Service)
	return nil
}

// GetActiveKey resolves the active credential for a service. A query failure
// is logged and reported as "no key": an absent credential is a
// configuration problem, not a dispatch failure, and the caller's error
// channel stays reserved for provider-call failures.
func (s *Service) GetActiveKey(ctx context.Context, service models.ProviderService) *models.ProviderKey {
	key, err := s.repo.FindActiveKey(ctx, service)
	if err != nil {
		fiberlog.Errorf("active key lookup failed for service %s: %v", service, err)
		return nil
	}
	return key
}

// TouchLastUsed stamps the key after a successful resolution. Best-effort:
// failure is logged and never propagated.
func (s *Service) TouchLastUsed(ctx context.Context, id string) {
	if err := s.repo.TouchLastUsed(ctx, id, time.Now().UTC()); err != nil {
		fiberlog.Warnf("failed to update last_used_at for key %s: %v", id, err)
	}
}
