package mysql

import (
	"context"
	"errors"
	"sync"
	"testing"

	approvalDomain "chama-ledger/internal/domain/approval"
	loanDomain "chama-ledger/internal/domain/loan"
	"chama-ledger/internal/domain/uow"
)

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)

	l := makeLoan(t, "member-1", 1_000)
	var apprID string
	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		if l.ID == 0 {
			t.Fatalf("loan auto ID not set")
		}
		a := makeApproval(l.ID, l.LoanID, t0)
		apprID = a.ApprovalID
		return r.Approvals.Create(ctx, a)
	})
	if err != nil {
		t.Fatalf("WithinTx commit err: %v", err)
	}

	if _, err := NewLoanRepository(db).GetByLoanID(ctx, l.LoanID); err != nil {
		t.Fatalf("loan not visible after commit: %v", err)
	}
	if _, err := NewApprovalRepository(db).GetByApprovalID(ctx, apprID); err != nil {
		t.Fatalf("approval not visible after commit: %v", err)
	}
}

func TestGormUoW_WithinTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)

	sentinel := errors.New("boom")
	l := makeLoan(t, "member-1", 1_000)
	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	if _, err := NewLoanRepository(db).GetByLoanID(ctx, l.LoanID); !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("expected loan not found after rollback, got %v", err)
	}
}

func TestGormUoW_WithinLoanTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)

	seed := makeLoan(t, "member-1", 5_000)
	if err := loanRepo.Create(ctx, seed); err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	err := guow.WithinLoanTx(ctx, seed.LoanID, func(r uow.Repos, l *loanDomain.Loan) error {
		if l == nil || l.LoanID != seed.LoanID || l.Status != loanDomain.StatusPending {
			t.Fatalf("unexpected loan passed to fn: %+v", l)
		}
		if _, err := l.Approve("admin-1", t0); err != nil {
			return err
		}
		if err := r.Approvals.Create(ctx, makeApproval(l.ID, l.LoanID, t0)); err != nil {
			return err
		}
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		t.Fatalf("WithinLoanTx commit err: %v", err)
	}

	got, err := loanRepo.GetByLoanID(ctx, seed.LoanID)
	if err != nil {
		t.Fatalf("GetByLoanID post-commit: %v", err)
	}
	if got.Status != loanDomain.StatusApproved || got.ApprovedBy != "admin-1" {
		t.Fatalf("loan not approved: %+v", got)
	}
	if _, err := NewApprovalRepository(db).GetByLoanID(ctx, seed.LoanID); err != nil {
		t.Fatalf("decision not visible after commit: %v", err)
	}
}

func TestGormUoW_WithinLoanTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)

	seed := makeLoan(t, "member-1", 5_000)
	if err := loanRepo.Create(ctx, seed); err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	sentinel := errors.New("stop")
	_ = guow.WithinLoanTx(ctx, seed.LoanID, func(r uow.Repos, l *loanDomain.Loan) error {
		if err := r.Approvals.Create(ctx, makeApproval(l.ID, l.LoanID, t0)); err != nil {
			return err
		}
		if _, err := l.Approve("admin-1", t0); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		return sentinel
	})

	got, err := loanRepo.GetByLoanID(ctx, seed.LoanID)
	if err != nil {
		t.Fatalf("post-rollback GetByLoanID: %v", err)
	}
	if got.Status != loanDomain.StatusPending || got.Revision != 0 {
		t.Fatalf("expected untouched pending loan after rollback, got %s rev %d", got.Status, got.Revision)
	}
	if _, err := NewApprovalRepository(db).GetByLoanID(ctx, seed.LoanID); !errors.Is(err, approvalDomain.ErrNotFound) {
		t.Fatalf("expected decision absent after rollback, got %v", err)
	}
}

func TestGormUoW_WithinLoanTx_LoanNotFound(t *testing.T) {
	guow := NewGormUoW(openTestDB(t))

	err := guow.WithinLoanTx(context.Background(), "nope", func(r uow.Repos, l *loanDomain.Loan) error {
		t.Fatalf("callback should not be called when loan missing")
		return nil
	})
	if !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGormUoW_WithinLoanTx_SerialisesRepayments(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)
	loanRepo := NewLoanRepository(db)

	seed := makeActiveLoan(t, "member-1", 30_000)
	if err := loanRepo.Create(ctx, seed); err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = guow.WithinLoanTx(ctx, seed.LoanID, func(r uow.Repos, l *loanDomain.Loan) error {
				if _, err := l.RecordRepayment(loanDomain.RepaymentInput{Amount: 20_000, Method: "cash"}, t0); err != nil {
					return err
				}
				return r.Loans.Save(ctx, l)
			})
		}(i)
	}
	wg.Wait()

	var ok, exceeded int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, loanDomain.ErrExceedsBalance):
			exceeded++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || exceeded != 1 {
		t.Fatalf("ok=%d exceeded=%d, want 1 and 1", ok, exceeded)
	}

	got, _ := loanRepo.GetByLoanID(ctx, seed.LoanID)
	if got.TotalRepaid != 20_000 || got.RemainingBalance != 10_000 {
		t.Fatalf("balance after race: repaid=%d remaining=%d", got.TotalRepaid, got.RemainingBalance)
	}
}
