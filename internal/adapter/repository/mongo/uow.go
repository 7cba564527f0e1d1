package mongo

import (
	"context"

	"chama-ledger/internal/domain/loan"
	"chama-ledger/internal/domain/uow"

	"go.mongodb.org/mongo-driver/mongo"
)

// UoW runs callbacks without a server transaction. Writes inside fn are not
// atomic as a group, so callers must save the loan before dependent records.
type UoW struct{ repos uow.Repos }

func NewUoW(db *mongo.Database) *UoW {
	return &UoW{repos: uow.Repos{
		Loans:     NewLoanRepository(db),
		Approvals: NewApprovalRepository(db),
	}}
}

func (u *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return fn(u.repos)
}

func (u *UoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	l, err := u.repos.Loans.GetByLoanIDForUpdate(ctx, loanID)
	if err != nil {
		return err
	}
	return fn(u.repos, l)
}
