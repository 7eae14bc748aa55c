package checkout

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mtlh01p/project-altar-server/internal/model"
)

var (
	ErrInvalidRequest = errors.New("no cart or items provided")
	// ErrIdempotencyKeyReused means the key already belongs to another cart's checkout.
	ErrIdempotencyKeyReused = errors.New("idempotency key already used for a different cart")
)

// DefaultMaxUnits caps the units one checkout may buy across all its lines.
const DefaultMaxUnits = 10000

// Item is one cart line as the POS page submits it at checkout time. Price and
// ProductStock are the caller's snapshot and are not re-read from the backend.
type Item struct {
	ID           model.ID        `json:"id"`
	ProductID    model.ID        `json:"productId"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	ProductStock int             `json:"productStock"`
	InventoryID  model.ID        `json:"inventoryId,omitempty"`
}

type Request struct {
	CartID model.ID `json:"cartId"`
	Items  []Item   `json:"items"`

	// IdempotencyKey comes from the Idempotency-Key header, not the body.
	IdempotencyKey string `json:"-"`
}

type Step string

const (
	StepUpdateStock    Step = "update_stock"
	StepDeleteCartItem Step = "delete_cart_item"
	StepDeleteCart     Step = "delete_cart"
	StepJournal        Step = "journal"
	StepPublish        Step = "publish_event"
)

// SideEffectFailure is a best-effort step that did not go through.
type SideEffectFailure struct {
	Step   Step   `json:"step"`
	Target string `json:"target"`
	Error  string `json:"error"`
}

type Result struct {
	// Transaction is the backend's answer to the create call, relayed verbatim.
	Transaction   json.RawMessage
	TransactionID model.ID
	CartID        model.ID
	Total         decimal.Decimal
	ProductIDs    []model.ID
	UserID        *string
	InventoryID   *model.ID
	Failures      []SideEffectFailure
	Replayed      bool
}

// Backend is the subset of the POS backend the checkout drives. The caller's
// credentials travel in ctx.
type Backend interface {
	CurrentUserID(ctx context.Context) (string, error)
	CreateTransaction(ctx context.Context, tx model.NewTransaction) (json.RawMessage, error)
	UpdateProductStock(ctx context.Context, productID model.ID, stock int) error
	DeleteCartItem(ctx context.Context, itemID model.ID) error
	DeleteCart(ctx context.Context, cartID model.ID) error
}

// Record is what the journal keeps about a finished checkout.
type Record struct {
	IdempotencyKey string
	CartID         model.ID
	UserID         *string
	Total          decimal.Decimal
	TransactionID  model.ID
	Transaction    json.RawMessage
	Failures       []SideEffectFailure
}

// Replay is a finished checkout found under an idempotency key.
type Replay struct {
	CartID      model.ID
	Transaction json.RawMessage
}

type Journal interface {
	// Completed returns the checkout stored for key, if one was recorded.
	Completed(ctx context.Context, idempotencyKey string) (Replay, bool, error)
	Record(ctx context.Context, rec Record) error
}

type Publisher interface {
	PublishCheckoutCompleted(ctx context.Context, res Result) error
}

type nopJournal struct{}

func (nopJournal) Completed(context.Context, string) (Replay, bool, error) {
	return Replay{}, false, nil
}
func (nopJournal) Record(context.Context, Record) error { return nil }

type nopPublisher struct{}

func (nopPublisher) PublishCheckoutCompleted(context.Context, Result) error { return nil }
