package approval

import "context"

type Repository interface {
	// Create a new decision (store uniqueness ensures at most one per loan)
	Create(ctx context.Context, a *Approval) error

	// Get the decision by public loan ID; ErrNotFound when the loan is undecided
	GetByLoanID(ctx context.Context, loanID string) (*Approval, error)

	// Get by public approval_id
	GetByApprovalID(ctx context.Context, approvalID string) (*Approval, error)
}
