package loan

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// Locks the loan for the rest of the surrounding transaction where the store supports it.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	ListByMember(ctx context.Context, memberID string) ([]Loan, error)
	// Empty memberID lists every loan.
	List(ctx context.Context, memberID string) ([]Loan, error)
	// Active loans whose next payment date is on or before cutoff.
	ListDue(ctx context.Context, cutoff time.Time) ([]Loan, error)
	// Persists changes and new repayments; fails with ErrConflict when the
	// stored revision no longer matches l.Revision. Bumps l.Revision on success.
	Save(ctx context.Context, l *Loan) error
}
