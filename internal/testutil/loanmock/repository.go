package loanmock

import (
	"context"
	"time"

	domain "chama-ledger/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset getters return context.Canceled; unset writers succeed.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	ListByMemberFn         func(ctx context.Context, memberID string) ([]domain.Loan, error)
	ListFn                 func(ctx context.Context, memberID string) ([]domain.Loan, error)
	ListDueFn              func(ctx context.Context, cutoff time.Time) ([]domain.Loan, error)
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByMember(ctx context.Context, memberID string) ([]domain.Loan, error) {
	if m.ListByMemberFn != nil {
		return m.ListByMemberFn(ctx, memberID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, memberID string) ([]domain.Loan, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, memberID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListDue(ctx context.Context, cutoff time.Time) ([]domain.Loan, error) {
	if m.ListDueFn != nil {
		return m.ListDueFn(ctx, cutoff)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}
