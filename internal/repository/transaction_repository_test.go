package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/linktrend/internal/model"
	"github.com/iliyamo/linktrend/internal/repository"
)

const trxSelectForUpdate = `SELECT id,video_id,user_id,amount,method,mobile_number,trx_ref,status,created_at FROM transactions WHERE id=? AND status='pending' FOR UPDATE`

func trxRow(id uint64, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "video_id", "user_id", "amount", "method", "mobile_number", "trx_ref", "status", "created_at"}).
		AddRow(id, 7, 3, 150, "bkash", "01712345678", "TRX9ABC12", status, time.Now())
}

func TestTransactionRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewTransactionRepo(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO transactions (video_id, user_id, amount, method, mobile_number, trx_ref, status) VALUES (?,?,?,?,?,?,'pending')`)).
			WithArgs(uint64(7), uint64(3), int64(150), "bkash", "01712345678", "TRX9ABC12").
			WillReturnResult(sqlmock.NewResult(42, 1))

		id, err := repo.Create(ctx, &model.Transaction{
			VideoID:      7,
			UserID:       3,
			Amount:       150,
			Method:       model.MethodBkash,
			MobileNumber: "01712345678",
			TrxRef:       "TRX9ABC12",
		})
		assert.NoError(t, err)
		assert.Equal(t, uint64(42), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateReference", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO transactions`)).
			WillReturnError(errors.New("Error 1062: Duplicate entry 'TRX9ABC12' for key 'uq_transactions_trx_ref'"))

		id, err := repo.Create(ctx, &model.Transaction{
			VideoID:      7,
			UserID:       3,
			Amount:       150,
			Method:       model.MethodBkash,
			MobileNumber: "01712345678",
			TrxRef:       "TRX9ABC12",
		})
		assert.Equal(t, uint64(0), id)
		assert.ErrorIs(t, err, repository.ErrDuplicateReference)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepo_Approve(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewTransactionRepo(db)
	ctx := context.Background()

	t.Run("UnlocksAndCommits", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(trxSelectForUpdate)).
			WithArgs(uint64(10)).
			WillReturnRows(trxRow(10, "pending"))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT IGNORE INTO unlocked_videos (user_id, video_id) VALUES (?,?)`)).
			WithArgs(uint64(3), uint64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE transactions SET status=? WHERE id=? AND status='pending'`)).
			WithArgs("approved", uint64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		trx, err := repo.Approve(ctx, 10)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusApproved, trx.Status)
		assert.Equal(t, uint64(3), trx.UserID)
		assert.Equal(t, uint64(7), trx.VideoID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyResolvedReadsAsNotFound", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(trxSelectForUpdate)).
			WithArgs(uint64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err := repo.Approve(ctx, 10)
		assert.ErrorIs(t, err, repository.ErrTransactionNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownIDReadsAsNotFound", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(trxSelectForUpdate)).
			WithArgs(uint64(999)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err := repo.Approve(ctx, 999)
		assert.ErrorIs(t, err, repository.ErrTransactionNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnlockFailureRollsBack", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(trxSelectForUpdate)).
			WithArgs(uint64(10)).
			WillReturnRows(trxRow(10, "pending"))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT IGNORE INTO unlocked_videos`)).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, err := repo.Approve(ctx, 10)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, repository.ErrTransactionNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepo_Reject(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewTransactionRepo(db)
	ctx := context.Background()

	t.Run("NoUnlockWrite", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(trxSelectForUpdate)).
			WithArgs(uint64(11)).
			WillReturnRows(trxRow(11, "pending"))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE transactions SET status=? WHERE id=? AND status='pending'`)).
			WithArgs("rejected", uint64(11)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		trx, err := repo.Reject(ctx, 11)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusRejected, trx.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepo_ListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewTransactionRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM transactions WHERE status='pending' ORDER BY created_at DESC, id DESC`)).
		WillReturnRows(trxRow(5, "pending"))

	trxs, err := repo.ListPending(context.Background())
	assert.NoError(t, err)
	assert.Len(t, trxs, 1)
	assert.Equal(t, model.StatusPending, trxs[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
