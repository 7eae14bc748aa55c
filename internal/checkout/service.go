package checkout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mtlh01p/project-altar-server/internal/metrics"
	"github.com/mtlh01p/project-altar-server/internal/middleware"
	"github.com/mtlh01p/project-altar-server/internal/model"
)

// Service turns a cart into a backend transaction and then clears the cart.
//
// Only transaction creation can fail a checkout. Stock updates, cart item and
// cart deletion run afterwards one by one; their failures are logged, counted
// and returned in Result.Failures, never retried and never rolled back.
type Service struct {
	backend   Backend
	journal   Journal
	publisher Publisher
	logger    *logrus.Logger
	maxUnits  int
}

type Option func(*Service)

func WithJournal(j Journal) Option {
	return func(s *Service) {
		if j != nil {
			s.journal = j
		}
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithMaxUnits overrides DefaultMaxUnits. Values below 1 are ignored.
func WithMaxUnits(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUnits = n
		}
	}
}

func NewService(backend Backend, logger *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		backend:   backend,
		journal:   nopJournal{},
		publisher: nopPublisher{},
		logger:    logger,
		maxUnits:  DefaultMaxUnits,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Checkout(ctx context.Context, req Request) (Result, error) {
	if err := Validate(req, s.maxUnits); err != nil {
		metrics.RecordCheckout("rejected")
		return Result{}, err
	}

	log := s.logger.WithFields(logrus.Fields{
		"cart_id":        req.CartID,
		"correlation_id": middleware.GetCorrelationID(ctx),
	})

	if req.IdempotencyKey != "" {
		prev, ok, err := s.journal.Completed(ctx, req.IdempotencyKey)
		switch {
		case err != nil:
			log.WithError(err).Warn("checkout: idempotency lookup failed, continuing")
		case ok && prev.CartID != req.CartID:
			log.WithFields(logrus.Fields{
				"idempotency_key": req.IdempotencyKey,
				"stored_cart_id":  prev.CartID,
			}).Warn("checkout: idempotency key reused for another cart")
			metrics.RecordCheckout("rejected")
			return Result{}, ErrIdempotencyKeyReused
		case ok:
			log.WithField("idempotency_key", req.IdempotencyKey).Info("checkout: replaying completed checkout")
			metrics.RecordCheckout("replayed")
			return Result{
				Transaction:   prev.Transaction,
				TransactionID: transactionID(prev.Transaction),
				CartID:        req.CartID,
				Replayed:      true,
			}, nil
		}
	}

	total, productIDs, inventoryID := Summarize(req.Items)
	userID := s.resolveUser(ctx, log)

	raw, err := s.backend.CreateTransaction(ctx, model.NewTransaction{
		ProductIDs:  productIDs,
		Total:       total,
		UserID:      userID,
		InventoryID: inventoryID,
	})
	if err != nil {
		log.WithError(err).Error("checkout: transaction creation failed")
		metrics.RecordCheckout("failed")
		return Result{}, fmt.Errorf("create transaction: %w", err)
	}

	res := Result{
		Transaction:   raw,
		TransactionID: transactionID(raw),
		CartID:        req.CartID,
		Total:         total,
		ProductIDs:    productIDs,
		UserID:        userID,
		InventoryID:   inventoryID,
	}
	log = log.WithField("transaction_id", res.TransactionID)

	// The transaction exists now; a client hanging up must not stop the cleanup.
	ctx = context.WithoutCancel(ctx)

	for _, it := range req.Items {
		stock := max(it.ProductStock-it.Quantity, 0)
		if err := s.backend.UpdateProductStock(ctx, it.ProductID, stock); err != nil {
			s.softFail(log, &res, StepUpdateStock, string(it.ProductID), err)
		}
	}
	for _, it := range req.Items {
		if err := s.backend.DeleteCartItem(ctx, it.ID); err != nil {
			s.softFail(log, &res, StepDeleteCartItem, string(it.ID), err)
		}
	}
	if err := s.backend.DeleteCart(ctx, req.CartID); err != nil {
		s.softFail(log, &res, StepDeleteCart, string(req.CartID), err)
	}

	if err := s.publisher.PublishCheckoutCompleted(ctx, res); err != nil {
		s.softFail(log, &res, StepPublish, string(res.TransactionID), err)
	}

	if err := s.journal.Record(ctx, Record{
		IdempotencyKey: req.IdempotencyKey,
		CartID:         req.CartID,
		UserID:         userID,
		Total:          total,
		TransactionID:  res.TransactionID,
		Transaction:    raw,
		Failures:       res.Failures,
	}); err != nil {
		// Not appended to res.Failures: the record is what would have carried them.
		log.WithError(err).Warn("checkout: journal write failed")
		metrics.RecordSideEffectFailure(string(StepJournal))
	}

	if len(res.Failures) > 0 {
		metrics.RecordCheckout("completed_with_errors")
	} else {
		metrics.RecordCheckout("completed")
	}
	log.WithFields(logrus.Fields{
		"total":    total.String(),
		"units":    len(productIDs),
		"failures": len(res.Failures),
	}).Info("checkout: completed")

	return res, nil
}

// Validate rejects requests that must not reach the backend at all, including
// carts buying more than maxUnits units in total.
func Validate(req Request, maxUnits int) error {
	if req.CartID == "" || len(req.Items) == 0 {
		return ErrInvalidRequest
	}
	units := 0
	for _, it := range req.Items {
		if it.Quantity < 1 || it.Quantity > maxUnits || it.Price.IsNegative() {
			return ErrInvalidRequest
		}
		units += it.Quantity
		if units > maxUnits {
			return ErrInvalidRequest
		}
	}
	return nil
}

// Summarize computes the exact total, one product id per purchased unit in item
// order, and the first inventory id any item carries.
func Summarize(items []Item) (decimal.Decimal, []model.ID, *model.ID) {
	total := decimal.Zero
	var productIDs []model.ID
	var inventoryID *model.ID

	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		for q := 0; q < it.Quantity; q++ {
			productIDs = append(productIDs, it.ProductID)
		}
		if inventoryID == nil && it.InventoryID != "" {
			id := it.InventoryID
			inventoryID = &id
		}
	}
	return total, productIDs, inventoryID
}

// resolveUser returns nil (anonymous) whenever the lookup fails.
func (s *Service) resolveUser(ctx context.Context, log *logrus.Entry) *string {
	id, err := s.backend.CurrentUserID(ctx)
	if err != nil {
		log.WithError(err).Debug("checkout: current user lookup failed, checking out anonymously")
		return nil
	}
	if id == "" {
		return nil
	}
	return &id
}

func (s *Service) softFail(log *logrus.Entry, res *Result, step Step, target string, err error) {
	log.WithError(err).WithFields(logrus.Fields{
		"step":   step,
		"target": target,
	}).Warn("checkout: best-effort step failed")
	metrics.RecordSideEffectFailure(string(step))
	res.Failures = append(res.Failures, SideEffectFailure{Step: step, Target: target, Error: err.Error()})
}

func transactionID(raw json.RawMessage) model.ID {
	var probe struct {
		TransactionID model.ID `json:"transactionId"`
		ID            model.ID `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	if probe.TransactionID != "" {
		return probe.TransactionID
	}
	return probe.ID
}
