package mongo

import (
	"context"
	"testing"

	approvalDomain "chama-ledger/internal/domain/approval"
	loanDomain "chama-ledger/internal/domain/loan"
	"chama-ledger/internal/domain/notification"
	"chama-ledger/internal/domain/uow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestApprovalRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	decision := &approvalDomain.Approval{
		ApprovalID: "cccccccccccccccccccccccccccccccc",
		LoanID:     "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Decision:   approvalDomain.DecisionRejected,
		DecidedBy:  "admin",
		Reason:     "insufficient savings",
		DecidedAt:  t0,
	}

	mt.Run("create and get", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, "chama.loan_decisions", mtest.FirstBatch, toDoc(t, decision)),
		)
		repo := NewApprovalRepository(mt.DB)

		require.NoError(t, repo.Create(ctx, decision))
		got, err := repo.GetByLoanID(ctx, decision.LoanID)
		require.NoError(t, err)
		assert.Equal(t, decision.ApprovalID, got.ApprovalID)
		assert.Equal(t, "insufficient savings", got.Reason)
	})

	mt.Run("second decision rejected", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "dup loan_id"}))
		repo := NewApprovalRepository(mt.DB)

		assert.ErrorIs(t, repo.Create(ctx, decision), approvalDomain.ErrAlreadyDecided)
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "chama.loan_decisions", mtest.FirstBatch))
		repo := NewApprovalRepository(mt.DB)

		_, err := repo.GetByApprovalID(ctx, "nope")
		assert.ErrorIs(t, err, approvalDomain.ErrNotFound)
	})
}

func TestNotificationRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("duplicate event", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "dup event_id"}),
		)
		repo := NewNotificationRepository(mt.DB)

		n := &notification.Notification{NotificationID: "n1", EventID: "e1", MemberID: "m1", Type: notification.TypeLoanDue}
		require.NoError(t, repo.Create(ctx, n))
		assert.False(t, n.CreatedAt.IsZero())

		again := &notification.Notification{NotificationID: "n2", EventID: "e1", MemberID: "m1"}
		assert.ErrorIs(t, repo.Create(ctx, again), notification.ErrDuplicate)
	})

	mt.Run("list by member", func(mt *mtest.T) {
		n := notification.Notification{NotificationID: "n1", EventID: "e1", MemberID: "m1", Title: "Payment due", CreatedAt: t0}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "chama.notifications", mtest.FirstBatch, toDoc(t, n)))
		repo := NewNotificationRepository(mt.DB)

		got, err := repo.ListByMember(ctx, "m1", 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Payment due", got[0].Title)
	})
}

func TestUoW_WithinLoanTx(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("loads loan then runs fn", func(mt *mtest.T) {
		l := activeLoan(t)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "chama.loans", mtest.FirstBatch, toDoc(t, l)),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)
		u := NewUoW(mt.DB)

		err := u.WithinLoanTx(ctx, l.LoanID, func(r uow.Repos, got *loanDomain.Loan) error {
			if _, err := got.RecordRepayment(loanDomain.RepaymentInput{Amount: 500}, t0); err != nil {
				return err
			}
			return r.Loans.Save(ctx, got)
		})
		require.NoError(t, err)
	})

	mt.Run("missing loan skips fn", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "chama.loans", mtest.FirstBatch))
		u := NewUoW(mt.DB)

		called := false
		err := u.WithinLoanTx(ctx, "nope", func(uow.Repos, *loanDomain.Loan) error { called = true; return nil })
		assert.ErrorIs(t, err, loanDomain.ErrNotFound)
		assert.False(t, called)
	})
}

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates all", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())
		require.NoError(t, EnsureIndexes(context.Background(), mt.DB))
	})
}
