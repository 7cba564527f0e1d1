package approval

import (
	"context"
	"errors"
	"testing"
	"time"

	"chama-ledger/internal/domain/approval"
	"chama-ledger/internal/domain/loan"
	"chama-ledger/internal/domain/uow"
	"chama-ledger/internal/testutil/approvalmock"
	"chama-ledger/internal/testutil/loanmock"
	"chama-ledger/internal/testutil/memstore"
	"chama-ledger/internal/testutil/uowmock"
	loanuc "chama-ledger/internal/usecase/loan"
)

var (
	now       = time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC)
	errDBDown = errors.New("db down")
)

func pendingLoan() *loan.Loan {
	l, _, err := loan.New(loan.Application{LoanID: "LN-123", MemberID: "M-1", Principal: 10_000, TermMonths: 6}, now)
	if err != nil {
		panic(err)
	}
	l.ID = 777
	return l
}

func newUsecase(loans *loanmock.Repo, apprs *approvalmock.Repo) *Usecase {
	tx := uowmock.Bound(uow.Repos{Loans: loans, Approvals: apprs})
	luc := loanuc.NewUsecase(tx, loans, nil, loanuc.WithClock(func() time.Time { return now }))
	return NewUsecase(luc, apprs)
}

func TestUsecase_Approve(t *testing.T) {
	in := ApproveInput{LoanID: "LN-123", ApproverID: "ADMIN-9"}

	tests := []struct {
		name     string
		approver string
		setup    func() *Usecase
		wantErr  error
		check    func(*DecisionDTO) error
	}{
		{
			name: "happy path pending -> approved",
			setup: func() *Usecase {
				loans := &loanmock.Repo{
					GetByLoanIDForUpdateFn: func(context.Context, string) (*loan.Loan, error) {
						return pendingLoan(), nil
					},
					SaveFn: func(_ context.Context, l *loan.Loan) error {
						if l.Status != loan.StatusApproved {
							t.Fatalf("expected status=approved, got %s", l.Status)
						}
						return nil
					},
				}
				apprs := &approvalmock.Repo{
					CreateFn: func(_ context.Context, a *approval.Approval) error {
						if a.LoanRefID != 777 || a.LoanID != "LN-123" || a.DecidedBy != "ADMIN-9" {
							t.Fatalf("decision mismatch: %+v", a)
						}
						return nil
					},
				}
				return newUsecase(loans, apprs)
			},
			check: func(dto *DecisionDTO) error {
				if dto == nil {
					return errors.New("dto is nil")
				}
				if dto.Decision != "approved" || dto.Loan.Status != "approved" || dto.Loan.ApprovedBy != "ADMIN-9" {
					return errors.New("dto mismatch")
				}
				if len(dto.ApprovalID) != 32 || !dto.DecidedAt.Equal(now) {
					return errors.New("decision id or time mismatch")
				}
				return nil
			},
		},
		{
			name: "loan not found",
			setup: func() *Usecase {
				loans := &loanmock.Repo{
					GetByLoanIDForUpdateFn: func(context.Context, string) (*loan.Loan, error) {
						return nil, loan.ErrNotFound
					},
				}
				return newUsecase(loans, &approvalmock.Repo{})
			},
			wantErr: loan.ErrNotFound,
		},
		{
			name: "already approved state",
			setup: func() *Usecase {
				loans := &loanmock.Repo{
					GetByLoanIDForUpdateFn: func(context.Context, string) (*loan.Loan, error) {
						l := pendingLoan()
						l.Status = loan.StatusApproved
						return l, nil
					},
					SaveFn: func(context.Context, *loan.Loan) error {
						t.Fatalf("Save must not be called")
						return nil
					},
				}
				return newUsecase(loans, &approvalmock.Repo{})
			},
			wantErr: loan.ErrInvalidState,
		},
		{
			name: "decision already recorded",
			setup: func() *Usecase {
				loans := &loanmock.Repo{
					GetByLoanIDForUpdateFn: func(context.Context, string) (*loan.Loan, error) {
						return pendingLoan(), nil
					},
				}
				apprs := &approvalmock.Repo{
					GetByLoanIDFn: func(context.Context, string) (*approval.Approval, error) {
						return &approval.Approval{ApprovalID: "X"}, nil
					},
				}
				return newUsecase(loans, apprs)
			},
			wantErr: loan.ErrInvalidState,
		},
		{
			name: "decision lookup fails",
			setup: func() *Usecase {
				loans := &loanmock.Repo{
					GetByLoanIDForUpdateFn: func(context.Context, string) (*loan.Loan, error) {
						return pendingLoan(), nil
					},
				}
				apprs := &approvalmock.Repo{
					GetByLoanIDFn: func(context.Context, string) (*approval.Approval, error) {
						return nil, errDBDown
					},
				}
				return newUsecase(loans, apprs)
			},
			wantErr: errDBDown,
		},
		{
			name: "unique index race maps to invalid state",
			setup: func() *Usecase {
				loans := &loanmock.Repo{
					GetByLoanIDForUpdateFn: func(context.Context, string) (*loan.Loan, error) {
						return pendingLoan(), nil
					},
				}
				apprs := &approvalmock.Repo{
					CreateFn: func(context.Context, *approval.Approval) error { return approval.ErrAlreadyDecided },
				}
				return newUsecase(loans, apprs)
			},
			wantErr: loan.ErrInvalidState,
		},
		{
			name:     "missing approver",
			approver: " ",
			setup: func() *Usecase {
				loans := &loanmock.Repo{
					GetByLoanIDForUpdateFn: func(context.Context, string) (*loan.Loan, error) {
						return pendingLoan(), nil
					},
				}
				return newUsecase(loans, &approvalmock.Repo{})
			},
			wantErr: loan.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := tt.setup()
			input := in
			if tt.approver != "" {
				input.ApproverID = tt.approver
			}
			dto, err := uc.Approve(context.Background(), input)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("want error %v, got nil", tt.wantErr)
				}
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				if cerr := tt.check(dto); cerr != nil {
					t.Fatalf("check failed: %v", cerr)
				}
			}
		})
	}
}

func TestUsecase_Reject_StoresReason(t *testing.T) {
	store := memstore.New()
	l := pendingLoan()
	store.Loans.Put(l)
	rec := &memstore.Recorder{}
	luc := loanuc.NewUsecase(store, store.Loans, rec, loanuc.WithClock(func() time.Time { return now }))
	uc := NewUsecase(luc, store.Approvals)
	ctx := context.Background()

	dto, err := uc.Reject(ctx, RejectInput{LoanID: l.LoanID, ApproverID: "ADMIN-1", Reason: "insufficient savings"})
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if dto.Decision != "rejected" || dto.Loan.Status != "rejected" || dto.Loan.Notes != "insufficient savings" {
		t.Fatalf("unexpected dto: %+v", dto)
	}

	got, err := uc.GetDecision(ctx, l.LoanID)
	if err != nil || got.Reason != "insufficient savings" || got.Decision != string(approval.DecisionRejected) {
		t.Fatalf("GetDecision: %+v, %v", got, err)
	}

	// a rejected loan is terminal
	if _, err := uc.Approve(ctx, ApproveInput{LoanID: l.LoanID, ApproverID: "ADMIN-1"}); !errors.Is(err, loan.ErrInvalidState) {
		t.Fatalf("approve after reject: want ErrInvalidState, got %v", err)
	}
	if len(rec.Events) != 1 || rec.Events[0].Type != loan.EventRejected {
		t.Fatalf("events: %+v", rec.Events)
	}
}
