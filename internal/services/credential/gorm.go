package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sparknote/ai-gateway/internal/models"
	"gorm.io/gorm"
)

// GormRepository persists provider keys through gorm.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&models.ProviderKey{})
}

func (r *GormRepository) Create(ctx context.Context, key *models.ProviderKey) error {
	if err := r.db.WithContext(ctx).Create(key).Error; err != nil {
		return fmt.Errorf("failed to create provider key: %w", err)
	}
	return nil
}

func (r *GormRepository) GetByID(ctx context.Context, id string) (*models.ProviderKey, error) {
	var key models.ProviderKey
	if err := r.db.WithContext(ctx).First(&key, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get provider key: %w", err)
	}
	return &key, nil
}

func (r *GormRepository) List(ctx context.Context, limit, offset int) ([]models.ProviderKey, int64, error) {
	var keys []models.ProviderKey
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.ProviderKey{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count provider keys: %w", err)
	}

	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	if err := query.Find(&keys).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list provider keys: %w", err)
	}

	return keys, total, nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.ProviderKey{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete provider key: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrKeyNotFound
	}
	return nil
}

func (r *GormRepository) FindActiveKey(ctx context.Context, service models.ProviderService) (*models.ProviderKey, error) {
	var key models.ProviderKey
	err := r.db.WithContext(ctx).
		Where("service = ? AND is_active = ?", service, true).
		Order("created_at DESC").
		First(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query active key: %w", err)
	}
	return &key, nil
}

func (r *GormRepository) DeactivateAllForService(ctx context.Context, service models.ProviderService) error {
	err := r.db.WithContext(ctx).
		Model(&models.ProviderKey{}).
		Where("service = ? AND is_active = ?", service, true).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate keys for service %s: %w", service, err)
	}
	return nil
}

func (r *GormRepository) ActivateByID(ctx context.Context, id string, service models.ProviderService) error {
	// Single guarded UPDATE: the activation only lands while no sibling key
	// of the same service is active. Two racing activations cannot both win;
	// the loser sees zero affected rows. The derived table keeps the
	// self-referencing subquery legal on MySQL.
	result := r.db.WithContext(ctx).
		Model(&models.ProviderKey{}).
		Where(
			"id = ? AND NOT EXISTS (SELECT 1 FROM (SELECT id FROM provider_keys WHERE service = ? AND is_active = ? AND id <> ?) AS live)",
			id, service, true, id,
		).
		Update("is_active", true)
	if result.Error != nil {
		return fmt.Errorf("failed to activate provider key: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrActivationConflict
	}
	return nil
}

func (r *GormRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.ProviderKey{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to update last_used_at: %w", err)
	}
	return nil
}
