package events

import (
	"embed"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mtlh01p/project-altar-server/internal/checkout"
	"github.com/mtlh01p/project-altar-server/internal/model"
)

const (
	checkoutCompletedEventName    = "CheckoutCompleted"
	checkoutCompletedEventVersion = 1
	checkoutCompletedSchema       = "schemas/CheckoutCompleted.v1.payload.schema.json"
)

// Schemas holds the JSON schemas of the published events.
//
//go:embed schemas/*.json
var Schemas embed.FS

// CheckoutCompletedPayload represents the v1 payload schema.
type CheckoutCompletedPayload struct {
	TransactionID      model.ID                     `json:"transactionId"`
	CartID             model.ID                     `json:"cartId"`
	UserID             *string                      `json:"userId"`
	InventoryID        *model.ID                    `json:"inventoryId"`
	Total              decimal.Decimal              `json:"total"`
	ProductIDs         []model.ID                   `json:"productIds"`
	SideEffectFailures []checkout.SideEffectFailure `json:"sideEffectFailures"`
}

type CheckoutCompletedEnvelope = EventEnvelope[CheckoutCompletedPayload]

// BuildCheckoutCompletedEnvelope builds the enveloped event for a finished checkout.
// Events for one cart share a partition key.
func BuildCheckoutCompletedEnvelope(res checkout.Result, meta EnvelopeMetadata, now time.Time) CheckoutCompletedEnvelope {
	if meta.CorrelationID == "" {
		meta.CorrelationID = uuid.NewString()
	}

	productIDs := res.ProductIDs
	if productIDs == nil {
		productIDs = []model.ID{}
	}
	failures := res.Failures
	if failures == nil {
		failures = []checkout.SideEffectFailure{}
	}

	return CheckoutCompletedEnvelope{
		EventName:     checkoutCompletedEventName,
		EventVersion:  checkoutCompletedEventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		Producer:      producerName,
		PartitionKey:  res.CartID.String(),
		OccurredAt:    now.UTC(),
		Schema:        checkoutCompletedSchema,
		Payload: CheckoutCompletedPayload{
			TransactionID:      res.TransactionID,
			CartID:             res.CartID,
			UserID:             res.UserID,
			InventoryID:        res.InventoryID,
			Total:              res.Total,
			ProductIDs:         productIDs,
			SideEffectFailures: failures,
		},
	}
}
