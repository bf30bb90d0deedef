package logger

import (
	"os"

	"go.uber.org/zap"
)

// New builds the process logger. APP_ENV=production selects the structured
// JSON production config; anything else gets the development console config.
func New() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// WithTenant returns the logger enriched with the tenant field used across
// all engine log lines.
func WithTenant(log *zap.Logger, tenantID int) *zap.Logger {
	return log.With(zap.Int("tenant_id", tenantID))
}
