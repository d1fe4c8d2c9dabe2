package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProviderKey is a stored credential for one AI provider service.
//
// Invariant: for a given service, at most one record has IsActive == true at
// any time. The credential service enforces this through the activation flow;
// nothing else may flip IsActive.
type ProviderKey struct {
	ID         string          `gorm:"primaryKey;size:36" json:"id"`
	Name       string          `gorm:"not null;size:255" json:"name"`
	Service    ProviderService `gorm:"not null;size:20;index:idx_provider_keys_service_active" json:"service"`
	Secret     string          `gorm:"not null;type:text" json:"-"`
	IsActive   bool            `gorm:"not null;default:false;index:idx_provider_keys_service_active" json:"is_active"`
	CreatedAt  time.Time       `gorm:"not null;autoCreateTime;index" json:"created_at"`
	LastUsedAt *time.Time      `json:"last_used_at,omitempty"`
}

func (ProviderKey) TableName() string {
	return "provider_keys"
}

func (k *ProviderKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	return nil
}

type ProviderKeyCreateRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=255"`
	Service string `json:"service" validate:"required"`
	Secret  string `json:"secret" validate:"required"`
}

// ProviderKeyResponse is the admin-facing view of a key. The secret is never
// included; it is only returned by the explicit reveal endpoint.
type ProviderKeyResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Service    ProviderService `json:"service"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	LastUsedAt *time.Time      `json:"last_used_at,omitempty"`
}

func (k *ProviderKey) ToResponse() ProviderKeyResponse {
	return ProviderKeyResponse{
		ID:         k.ID,
		Name:       k.Name,
		Service:    k.Service,
		IsActive:   k.IsActive,
		CreatedAt:  k.CreatedAt,
		LastUsedAt: k.LastUsedAt,
	}
}

// ProviderKeySecretResponse carries a secret revealed on demand
// (copy-to-clipboard in the admin UI).
type ProviderKeySecretResponse struct {
	ID     string `json:"id"`
	Secret string `json:"secret"`
}
