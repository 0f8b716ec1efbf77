package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/contracts"
)

// NopPublisher drops events. It is used when no broker is configured.
type NopPublisher struct {
	Logger *zap.Logger
}

func (n NopPublisher) PublishCartCheckedOut(ctx context.Context, rec contracts.CheckoutRecord) error {
	if n.Logger != nil {
		n.Logger.Debug("event publishing disabled, dropping CartCheckedOut", zap.String("session_id", rec.SessionID))
	}
	return nil
}
