package approval

import (
	"time"

	loanuc "chama-ledger/internal/usecase/loan"
)

type ApproveInput struct {
	LoanID     string
	ApproverID string
}

type RejectInput struct {
	LoanID     string
	ApproverID string
	Reason     string
}

type DecisionDTO struct {
	ApprovalID string          `json:"approval_id"`
	LoanID     string          `json:"loan_id"`
	Decision   string          `json:"decision"`
	DecidedBy  string          `json:"decided_by"`
	Reason     string          `json:"reason,omitempty"`
	DecidedAt  time.Time       `json:"decided_at"`
	Loan       *loanuc.LoanDTO `json:"loan,omitempty"`
}
