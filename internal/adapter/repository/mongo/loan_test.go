package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	loanDomain "chama-ledger/internal/domain/loan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

var t0 = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

func toDoc(t *testing.T, v any) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func activeLoan(t *testing.T) *loanDomain.Loan {
	t.Helper()
	l, _, err := loanDomain.New(loanDomain.Application{
		LoanID: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", MemberID: "m1",
		Principal: 30_000, InterestRate: 12, TermMonths: 6,
	}, t0)
	require.NoError(t, err)
	_, err = l.Approve("admin", t0)
	require.NoError(t, err)
	_, err = l.Disburse(t0)
	require.NoError(t, err)
	return l
}

func TestLoanRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	ns := "chama.loans"

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewLoanRepository(mt.DB)

		l := activeLoan(t)
		require.NoError(t, repo.Create(ctx, l))
		assert.NotNil(t, l.Repayments)
		assert.False(t, l.CreatedAt.IsZero())
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))
		repo := NewLoanRepository(mt.DB)

		err := repo.Create(ctx, activeLoan(t))
		assert.ErrorIs(t, err, loanDomain.ErrConflict)
	})

	mt.Run("get found", func(mt *mtest.T) {
		l := activeLoan(t)
		_, err := l.RecordRepayment(loanDomain.RepaymentInput{Amount: 1_000, Method: "mpesa"}, t0)
		require.NoError(t, err)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, toDoc(t, l)))
		repo := NewLoanRepository(mt.DB)

		got, err := repo.GetByLoanIDForUpdate(ctx, l.LoanID)
		require.NoError(t, err)
		assert.Equal(t, l.LoanID, got.LoanID)
		assert.Equal(t, loanDomain.StatusActive, got.Status)
		assert.Equal(t, int64(29_000), got.RemainingBalance)
		require.Len(t, got.Repayments, 1)
		assert.Equal(t, 1, got.Repayments[0].Seq)
	})

	mt.Run("get not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := NewLoanRepository(mt.DB)

		_, err := repo.GetByLoanID(ctx, "nope")
		assert.ErrorIs(t, err, loanDomain.ErrNotFound)
	})

	mt.Run("list by member", func(mt *mtest.T) {
		a, b := activeLoan(t), activeLoan(t)
		b.LoanID = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, toDoc(t, a)),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch, toDoc(t, b)),
		)
		repo := NewLoanRepository(mt.DB)

		got, err := repo.ListByMember(ctx, "m1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, b.LoanID, got[1].LoanID)
	})

	mt.Run("list due empty", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := NewLoanRepository(mt.DB)

		got, err := repo.ListDue(ctx, t0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	mt.Run("save bumps revision", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		repo := NewLoanRepository(mt.DB)

		l := activeLoan(t)
		l.Revision = 4
		require.NoError(t, repo.Save(ctx, l))
		assert.Equal(t, int64(5), l.Revision)
	})

	mt.Run("save stale revision", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		repo := NewLoanRepository(mt.DB)

		l := activeLoan(t)
		l.Revision = 4
		err := repo.Save(ctx, l)
		assert.ErrorIs(t, err, loanDomain.ErrConflict)
		assert.Equal(t, int64(4), l.Revision, "revision untouched on conflict")
	})

	mt.Run("save server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad value"}))
		repo := NewLoanRepository(mt.DB)

		err := repo.Save(ctx, activeLoan(t))
		require.Error(t, err)
		assert.False(t, errors.Is(err, loanDomain.ErrConflict))
	})
}
