package models

import "time"

// UsageLog is one append-only row per dispatch attempt. ProviderKeyID is nil
// when the environment fallback key was used or no key was resolved.
type UsageLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ProviderKeyID *string   `gorm:"size:36;index" json:"provider_key_id,omitempty"`
	Operation     string    `gorm:"not null;size:100;default:''" json:"operation"`
	Provider      string    `gorm:"not null;size:20;index;default:''" json:"provider"`
	Model         string    `gorm:"not null;size:100;default:''" json:"model"`
	TokensUsed    *int      `json:"tokens_used,omitempty"`
	Successful    bool      `gorm:"not null;default:false" json:"successful"`
	ErrorMessage  string    `gorm:"not null;type:text;default:''" json:"error_message,omitzero"`
	LatencyMs     int       `gorm:"not null;default:0" json:"latency_ms"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (UsageLog) TableName() string {
	return "usage_logs"
}

type UsageStats struct {
	TotalRequests   int64 `json:"total_requests"`
	SuccessRequests int64 `json:"success_requests"`
	FailedRequests  int64 `json:"failed_requests"`
	TotalTokens     int64 `json:"total_tokens"`
}
