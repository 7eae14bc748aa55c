package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/mtlh01p/project-altar-server/internal/checkout"
	"github.com/mtlh01p/project-altar-server/internal/model"
)

var ErrNotFound = errors.New("not found")

const (
	StatusCompleted           = "completed"
	StatusCompletedWithErrors = "completed_with_errors"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// Entry is one row of checkout_journal.
type Entry struct {
	ID             string
	IdempotencyKey *string
	CartID         string
	UserID         *string
	Total          decimal.Decimal
	TransactionID  string
	Transaction    json.RawMessage
	Failures       []checkout.SideEffectFailure
	Status         string
	CreatedAt      time.Time
}

// PostgresRepository implements checkout.Journal on top of pgx.
type PostgresRepository struct {
	pool  DBPool
	newID func() string
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool, newID: uuid.NewString}
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresRepository) Get(ctx context.Context, idempotencyKey string) (Entry, error) {
	var (
		e        Entry
		tx       []byte
		failures []byte
	)
	row := r.pool.QueryRow(ctx, `
		SELECT id, idempotency_key, cart_id, user_id, total, transaction_id, transaction, side_effect_failures, status, created_at
		FROM checkout_journal
		WHERE idempotency_key=$1
	`, idempotencyKey)
	err := row.Scan(&e.ID, &e.IdempotencyKey, &e.CartID, &e.UserID, &e.Total, &e.TransactionID,
		&tx, &failures, &e.Status, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	e.Transaction = json.RawMessage(tx)
	if len(failures) > 0 {
		if err := json.Unmarshal(failures, &e.Failures); err != nil {
			return Entry{}, fmt.Errorf("decode side_effect_failures: %w", err)
		}
	}
	return e, nil
}

// Completed reports the checkout stored for a key together with the cart it
// belonged to. Both completed statuses count: the transaction exists either way.
func (r *PostgresRepository) Completed(ctx context.Context, idempotencyKey string) (checkout.Replay, bool, error) {
	e, err := r.Get(ctx, idempotencyKey)
	if errors.Is(err, ErrNotFound) {
		return checkout.Replay{}, false, nil
	}
	if err != nil {
		return checkout.Replay{}, false, err
	}
	return checkout.Replay{CartID: model.ID(e.CartID), Transaction: e.Transaction}, true, nil
}

// Record inserts the entry. A second record for an idempotency key already
// present is dropped; the first one wins.
func (r *PostgresRepository) Record(ctx context.Context, rec checkout.Record) error {
	failures := rec.Failures
	if failures == nil {
		failures = []checkout.SideEffectFailure{}
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("encode side_effect_failures: %w", err)
	}

	status := StatusCompleted
	if len(rec.Failures) > 0 {
		status = StatusCompletedWithErrors
	}

	var key *string
	if rec.IdempotencyKey != "" {
		key = &rec.IdempotencyKey
	}

	tx := rec.Transaction
	if len(tx) == 0 {
		tx = json.RawMessage("null")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO checkout_journal(id, idempotency_key, cart_id, user_id, total, transaction_id, transaction, side_effect_failures, status)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (idempotency_key) DO NOTHING
	`, r.newID(), key, rec.CartID.String(), rec.UserID, rec.Total, rec.TransactionID.String(),
		[]byte(tx), failuresJSON, status)
	if err != nil {
		return fmt.Errorf("insert checkout_journal: %w", err)
	}
	return nil
}
