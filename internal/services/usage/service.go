// Package usage persists dispatch outcomes and serves usage analytics.
package usage

import (
	"context"

	"github.com/sparknote/ai-gateway/internal/models"
	"github.com/sparknote/ai-gateway/internal/services/database"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Service records dispatch outcomes and answers usage queries.
type Service struct {
	db *database.DB
}

func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// Record writes one usage log row from a dispatch outcome. Recording is
// best-effort: a storage failure is logged and swallowed so it never turns a
// successful generation into an error for the caller.
func (s *Service) Record(ctx context.Context, outcome models.DispatchOutcome) {
	entry := models.UsageLog{
		ProviderKeyID: outcome.KeyID,
		Operation:     outcome.Operation,
		Provider:      string(outcome.Service),
		Model:         outcome.Model,
		TokensUsed:    outcome.TokensUsed,
		Successful:    outcome.Successful,
		ErrorMessage:  outcome.ErrorMessage,
		LatencyMs:     outcome.LatencyMs,
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		fiberlog.Errorf("Failed to record usage log for %s/%s: %v", outcome.Service, outcome.Operation, err)
	}
}

// ListFilter narrows a usage log query. Zero values mean no filtering.
type ListFilter struct {
	Provider string
	Limit    int
	Offset   int
}

// List returns usage logs newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.UsageLog, int64, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := s.db.WithContext(ctx).Model(&models.UsageLog{})
	if filter.Provider != "" {
		query = query.Where("provider = ?", filter.Provider)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError("failed to count usage logs", err)
	}

	var logs []models.UsageLog
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&logs).Error
	if err != nil {
		return nil, 0, models.NewInternalError("failed to list usage logs", err)
	}

	return logs, total, nil
}

// Stats aggregates request and token counts, optionally per provider.
func (s *Service) Stats(ctx context.Context, provider string) (*models.UsageStats, error) {
	query := s.db.WithContext(ctx).Model(&models.UsageLog{})
	if provider != "" {
		query = query.Where("provider = ?", provider)
	}

	var stats models.UsageStats
	row := query.
		Select(
			"COUNT(*) AS total_requests, " +
				"COALESCE(SUM(CASE WHEN successful THEN 1 ELSE 0 END), 0) AS success_requests, " +
				"COALESCE(SUM(CASE WHEN successful THEN 0 ELSE 1 END), 0) AS failed_requests, " +
				"COALESCE(SUM(tokens_used), 0) AS total_tokens",
		).
		Row()
	if err := row.Scan(&stats.TotalRequests, &stats.SuccessRequests, &stats.FailedRequests, &stats.TotalTokens); err != nil {
		if err == gorm.ErrRecordNotFound {
			return &models.UsageStats{}, nil
		}
		return nil, models.NewInternalError("failed to aggregate usage stats", err)
	}

	return &stats, nil
}
