package dispatch

import (
	"context"
	"time"

	"github.com/sparknote/ai-gateway/internal/config"
	"github.com/sparknote/ai-gateway/internal/models"
	"github.com/sparknote/ai-gateway/internal/services/credential"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// DefaultOperation labels dispatches whose caller supplied no operation name.
const DefaultOperation = "generate"

// CredentialResolver is the slice of the credential service the dispatcher
// needs: the active key for a service and a last-used timestamp update.
type CredentialResolver interface {
	GetActiveKey(ctx context.Context, service models.ProviderService) *models.ProviderKey
	TouchLastUsed(ctx context.Context, id string)
}

var _ CredentialResolver = (*credential.Service)(nil)

// Service is the dispatch facade. It resolves a credential, delegates to the
// provider adapter, and produces one DispatchOutcome per call, success or not.
type Service struct {
	cfg         *config.Config
	credentials CredentialResolver
	adapters    map[models.ProviderService]Adapter
}

// NewService builds the facade with the full adapter set registered.
func NewService(cfg *config.Config, credentials CredentialResolver) *Service {
	svc := &Service{
		cfg:         cfg,
		credentials: credentials,
		adapters:    make(map[models.ProviderService]Adapter),
	}
	svc.register(NewOpenAIAdapter())
	svc.register(NewPerplexityAdapter())
	svc.register(NewAnthropicAdapter())
	svc.register(NewGoogleAdapter())
	return svc
}

func (s *Service) register(adapter Adapter) {
	s.adapters[adapter.Service()] = adapter
}

// SupportedServices lists the services with a registered adapter.
func (s *Service) SupportedServices() []models.ProviderService {
	services := make([]models.ProviderService, 0, len(s.adapters))
	for _, svc := range models.AllServices {
		if _, ok := s.adapters[svc]; ok {
			services = append(services, svc)
		}
	}
	return services
}

// Generate routes one request to its provider. Credential resolution happens
// before any network traffic: a service with no adapter or no usable key
// fails without an upstream call. The returned DispatchOutcome is populated
// for every path, including failures.
func (s *Service) Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResult, models.DispatchOutcome, error) {
	start := time.Now()

	operation := req.Operation
	if operation == "" {
		operation = DefaultOperation
	}

	outcome := models.DispatchOutcome{
		Operation: operation,
		Service:   req.Service,
	}

	adapter, ok := s.adapters[req.Service]
	if !ok {
		err := models.NewUnsupportedServiceError(req.Service)
		return nil, s.finish(&outcome, start, err), err
	}

	providerCfg := s.cfg.ProviderConfig(req.Service)

	apiKey := ""
	if key := s.credentials.GetActiveKey(ctx, req.Service); key != nil {
		apiKey = key.Secret
		keyID := key.ID
		outcome.KeyID = &keyID
	} else if fallback := s.cfg.FallbackAPIKey(req.Service); fallback != "" {
		fiberlog.Debugf("No stored key for %s, using configured fallback credential", req.Service)
		apiKey = fallback
	}
	if apiKey == "" {
		err := models.NewNoActiveKeyError(req.Service)
		return nil, s.finish(&outcome, start, err), err
	}

	model := req.Model
	if model == "" {
		model = s.cfg.DefaultModel(req.Service)
	}
	outcome.Model = model

	adapterReq := *req
	adapterReq.Model = model

	result, err := adapter.Generate(ctx, apiKey, providerCfg, &adapterReq)
	if err != nil {
		return nil, s.finish(&outcome, start, err), err
	}

	if result.Model != "" {
		outcome.Model = result.Model
	}
	outcome.TokensUsed = models.TotalTokens(result.Usage)
	outcome.Successful = true

	if outcome.KeyID != nil {
		s.credentials.TouchLastUsed(ctx, *outcome.KeyID)
	}

	return result, s.finish(&outcome, start, nil), nil
}

// finish stamps latency and failure details onto the outcome.
func (s *Service) finish(outcome *models.DispatchOutcome, start time.Time, err error) models.DispatchOutcome {
	outcome.LatencyMs = int(time.Since(start).Milliseconds())
	if err != nil {
		outcome.Successful = false
		outcome.ErrorMessage = err.Error()
	}
	return *outcome
}
