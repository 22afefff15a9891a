package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/linktrend/internal/model"
)

// TransactionRepo owns payment-request records and their state
// transitions. Approve is the one cross-entity write in the system:
// it grants the user the unlocked video inside the same database
// transaction that flips the status, so a grant can never be observed
// without its approval or vice versa.
type TransactionRepo struct{ DB *sql.DB }

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{DB: db} }

const trxColumns = "id,video_id,user_id,amount,method,mobile_number,trx_ref,status,created_at"

// Create inserts a pending transaction and returns its ID. The unique
// index on trx_ref rejects duplicate references; MySQL reports that
// as error 1062.
func (r *TransactionRepo) Create(ctx context.Context, t *model.Transaction) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO transactions (video_id, user_id, amount, method, mobile_number, trx_ref, status) VALUES (?,?,?,?,?,?,'pending')",
		t.VideoID, t.UserID, t.Amount, string(t.Method), t.MobileNumber, t.TrxRef)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrDuplicateReference
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a transaction by id.
func (r *TransactionRepo) GetByID(ctx context.Context, id uint64) (model.Transaction, error) {
	var t model.Transaction
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+trxColumns+" FROM transactions WHERE id=? LIMIT 1", id).
		Scan(&t.ID, &t.VideoID, &t.UserID, &t.Amount, &t.Method, &t.MobileNumber,
			&t.TrxRef, &t.Status, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Transaction{}, ErrTransactionNotFound
	}
	return t, err
}

// ListAll returns every transaction, newest first.
func (r *TransactionRepo) ListAll(ctx context.Context) ([]model.Transaction, error) {
	return r.list(ctx, "SELECT "+trxColumns+" FROM transactions ORDER BY created_at DESC, id DESC")
}

// ListPending returns only unresolved transactions, newest first.
func (r *TransactionRepo) ListPending(ctx context.Context) ([]model.Transaction, error) {
	return r.list(ctx,
		"SELECT "+trxColumns+" FROM transactions WHERE status='pending' ORDER BY created_at DESC, id DESC")
}

func (r *TransactionRepo) list(ctx context.Context, query string) ([]model.Transaction, error) {
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trxs := make([]model.Transaction, 0)
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.VideoID, &t.UserID, &t.Amount, &t.Method,
			&t.MobileNumber, &t.TrxRef, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		trxs = append(trxs, t)
	}
	return trxs, rows.Err()
}

// Approve resolves a pending transaction and unlocks the video for
// the user. Both writes happen in one database transaction: the
// unlock insert first (INSERT IGNORE keeps the append idempotent),
// then the status flip guarded by status='pending'. When the guard
// matches no row — the id is unknown or the record was already
// resolved — the whole transaction rolls back and
// ErrTransactionNotFound is returned; missing and already-resolved
// are intentionally indistinguishable.
func (r *TransactionRepo) Approve(ctx context.Context, id uint64) (model.Transaction, error) {
	return r.resolve(ctx, id, model.StatusApproved, true)
}

// Reject resolves a pending transaction without granting anything.
func (r *TransactionRepo) Reject(ctx context.Context, id uint64) (model.Transaction, error) {
	return r.resolve(ctx, id, model.StatusRejected, false)
}

func (r *TransactionRepo) resolve(ctx context.Context, id uint64, status model.TransactionStatus, unlock bool) (model.Transaction, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Transaction{}, err
	}
	defer tx.Rollback()

	var t model.Transaction
	err = tx.QueryRowContext(ctx,
		"SELECT "+trxColumns+" FROM transactions WHERE id=? AND status='pending' FOR UPDATE", id).
		Scan(&t.ID, &t.VideoID, &t.UserID, &t.Amount, &t.Method, &t.MobileNumber,
			&t.TrxRef, &t.Status, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Transaction{}, ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}

	if unlock {
		if _, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO unlocked_videos (user_id, video_id) VALUES (?,?)",
			t.UserID, t.VideoID); err != nil {
			return model.Transaction{}, err
		}
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE transactions SET status=? WHERE id=? AND status='pending'",
		string(status), id)
	if err != nil {
		return model.Transaction{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Transaction{}, ErrTransactionNotFound
	}

	if err := tx.Commit(); err != nil {
		return model.Transaction{}, err
	}
	t.Status = status
	return t, nil
}
