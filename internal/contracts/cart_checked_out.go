package contracts

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
)

const (
	CartCheckedOutEventName    = "CartCheckedOut"
	CartCheckedOutEventVersion = 1
	CartCheckedOutSchema       = "storefront/events/CartCheckedOut.v1.enveloped"
	StorefrontProducer         = "storefront"
)

type EventEnvelope struct {
	EventName     string                `json:"eventName"`
	EventVersion  int                   `json:"eventVersion"`
	EventID       string                `json:"eventId"`
	CorrelationID string                `json:"correlationId,omitempty"`
	CausationID   string                `json:"causationId,omitempty"`
	Producer      string                `json:"producer"`
	PartitionKey  string                `json:"partitionKey"`
	Sequence      int64                 `json:"sequence"`
	OccurredAt    time.Time             `json:"occurredAt"`
	Schema        string                `json:"schema"`
	Payload       CartCheckedOutPayload `json:"payload"`
}

type CartCheckedOutPayload struct {
	SessionID    string               `json:"sessionId"`
	UserEmail    string               `json:"userEmail,omitempty"`
	Items        []CartCheckedOutItem `json:"items"`
	TotalAmount  decimal.Decimal      `json:"totalAmount"`
	Confirmation cart.Confirmation    `json:"confirmation,omitempty"`
	Timestamp    time.Time            `json:"timestamp"`
}

type CartCheckedOutItem struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (p CartCheckedOutPayload) MarshalJSON() ([]byte, error) {
	type plain CartCheckedOutPayload
	return json.Marshal(struct {
		plain
		TotalAmount json.Number `json:"totalAmount"`
	}{plain(p), cart.Number(p.TotalAmount)})
}

func (it CartCheckedOutItem) MarshalJSON() ([]byte, error) {
	type plain CartCheckedOutItem
	return json.Marshal(struct {
		plain
		Price json.Number `json:"price"`
	}{plain(it), cart.Number(it.Price)})
}

// CheckoutRecord is what the session layer knows about an accepted checkout.
type CheckoutRecord struct {
	SessionID    string
	UserEmail    string
	Items        []cart.LineItem
	Total        decimal.Decimal
	Confirmation cart.Confirmation
}

type EnvelopeOptions struct {
	Sequence      int64
	Producer      string
	SchemaPath    string
	CorrelationID string
	CausationID   string
	EventID       string
	OccurredAt    time.Time
}

// BuildCartCheckedOutEvent wraps rec in a v1 envelope partitioned by
// session id. Zero-valued options get defaults.
func BuildCartCheckedOutEvent(rec CheckoutRecord, opts EnvelopeOptions) EventEnvelope {
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	schemaPath := opts.SchemaPath
	if schemaPath == "" {
		schemaPath = CartCheckedOutSchema
	}

	producer := opts.Producer
	if producer == "" {
		producer = StorefrontProducer
	}

	payload := CartCheckedOutPayload{
		SessionID:    rec.SessionID,
		UserEmail:    rec.UserEmail,
		Items:        make([]CartCheckedOutItem, 0, len(rec.Items)),
		TotalAmount:  rec.Total,
		Confirmation: rec.Confirmation,
		Timestamp:    occurredAt,
	}
	for _, it := range rec.Items {
		payload.Items = append(payload.Items, CartCheckedOutItem{
			ProductID: it.ID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	return EventEnvelope{
		EventName:     CartCheckedOutEventName,
		EventVersion:  CartCheckedOutEventVersion,
		EventID:       eventID,
		CorrelationID: opts.CorrelationID,
		CausationID:   opts.CausationID,
		Producer:      producer,
		PartitionKey:  rec.SessionID,
		Sequence:      opts.Sequence,
		OccurredAt:    occurredAt,
		Schema:        schemaPath,
		Payload:       payload,
	}
}
