package approval

import (
	"context"
	"errors"
	"time"

	domainApproval "chama-ledger/internal/domain/approval"
	domainLoan "chama-ledger/internal/domain/loan"
	"chama-ledger/internal/domain/uow"
	loanuc "chama-ledger/internal/usecase/loan"
	"chama-ledger/pkg/id"
)

type Usecase struct {
	loans        *loanuc.Usecase
	approvalRepo domainApproval.Repository
}

// NewUsecase: decisions run through the loan use case so they share its locking and retries.
func NewUsecase(loans *loanuc.Usecase, approvals domainApproval.Repository) *Usecase {
	return &Usecase{loans: loans, approvalRepo: approvals}
}

func (u *Usecase) Approve(ctx context.Context, in ApproveInput) (*DecisionDTO, error) {
	return u.decide(ctx, "approve", in.LoanID, domainApproval.DecisionApproved, in.ApproverID, "",
		func(l *domainLoan.Loan, now time.Time) ([]domainLoan.Event, error) {
			return l.Approve(in.ApproverID, now)
		})
}

func (u *Usecase) Reject(ctx context.Context, in RejectInput) (*DecisionDTO, error) {
	return u.decide(ctx, "reject", in.LoanID, domainApproval.DecisionRejected, in.ApproverID, in.Reason,
		func(l *domainLoan.Loan, now time.Time) ([]domainLoan.Event, error) {
			return l.Reject(in.ApproverID, in.Reason, now)
		})
}

func (u *Usecase) decide(
	ctx context.Context,
	op, loanID string,
	decision domainApproval.Decision,
	approverID, reason string,
	apply func(l *domainLoan.Loan, now time.Time) ([]domainLoan.Event, error),
) (*DecisionDTO, error) {
	var rec *domainApproval.Approval

	check := func(r uow.Repos, l *domainLoan.Loan, now time.Time) ([]domainLoan.Event, error) {
		// a stored decision wins over whatever status the loan reports
		if _, err := r.Approvals.GetByLoanID(ctx, l.LoanID); err == nil {
			return nil, domainLoan.Wrap(op, l.LoanID, domainLoan.ErrInvalidState)
		} else if !errors.Is(err, domainApproval.ErrNotFound) {
			return nil, err
		}

		evs, err := apply(l, now)
		if err != nil {
			return nil, err
		}
		rec = &domainApproval.Approval{
			ApprovalID: id.NewID32(),
			LoanRefID:  l.ID,
			LoanID:     l.LoanID,
			Decision:   decision,
			DecidedBy:  approverID,
			Reason:     reason,
			DecidedAt:  now.UTC(),
		}
		return evs, nil
	}
	record := func(r uow.Repos, l *domainLoan.Loan) error {
		if err := r.Approvals.Create(ctx, rec); err != nil {
			if errors.Is(err, domainApproval.ErrAlreadyDecided) {
				return domainLoan.Wrap(op, l.LoanID, domainLoan.ErrInvalidState)
			}
			return err
		}
		return nil
	}

	l, err := u.loans.MutateThen(ctx, op, loanID, check, record)
	if err != nil {
		return nil, err
	}
	return &DecisionDTO{
		ApprovalID: rec.ApprovalID,
		LoanID:     l.LoanID,
		Decision:   string(rec.Decision),
		DecidedBy:  rec.DecidedBy,
		Reason:     rec.Reason,
		DecidedAt:  rec.DecidedAt,
		Loan:       loanuc.ToDTO(l),
	}, nil
}

// GetDecision returns the recorded decision for a loan.
func (u *Usecase) GetDecision(ctx context.Context, loanID string) (*DecisionDTO, error) {
	a, err := u.approvalRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return &DecisionDTO{
		ApprovalID: a.ApprovalID,
		LoanID:     a.LoanID,
		Decision:   string(a.Decision),
		DecidedBy:  a.DecidedBy,
		Reason:     a.Reason,
		DecidedAt:  a.DecidedAt,
	}, nil
}
