package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New builds the process logger. "prod"/"production" gives JSON output at
// info level; anything else gives console output at debug level.
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build(zap.Fields(zap.String("service", "storefront")))
}
