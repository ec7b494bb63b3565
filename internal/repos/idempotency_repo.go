package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// IdempotencyRepo keeps checkout idempotency keys in the idempotency_keys
// table. A claimed key has a NULL order_id until Complete binds it.
type IdempotencyRepo struct{ db *sqlx.DB }

func NewIdempotencyRepo(db *sqlx.DB) *IdempotencyRepo { return &IdempotencyRepo{db: db} }

// Claim reserves key. When the key already exists, claimed is false and
// orderID is the stored order (0 while the first request is still running).
func (r *IdempotencyRepo) Claim(ctx context.Context, key string) (orderID int64, claimed bool, err error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO idempotency_keys(idem_key) VALUES(?)
		ON CONFLICT(idem_key) DO NOTHING
	`), key)
	if err != nil {
		return 0, false, errors.Wrap(err, "claim idempotency key")
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return 0, true, nil
	}
	err = r.db.GetContext(ctx, &orderID, r.db.Rebind(`SELECT COALESCE(order_id, 0) FROM idempotency_keys WHERE idem_key = ?`), key)
	return orderID, false, errors.Wrap(err, "read idempotency key")
}

func (r *IdempotencyRepo) Complete(ctx context.Context, key string, orderID int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE idempotency_keys SET order_id = ? WHERE idem_key = ?`), orderID, key)
	return errors.Wrap(err, "complete idempotency key")
}

// Release drops a claim whose checkout failed so the key can be retried.
func (r *IdempotencyRepo) Release(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM idempotency_keys WHERE idem_key = ? AND order_id IS NULL`), key)
	return errors.Wrap(err, "release idempotency key")
}
