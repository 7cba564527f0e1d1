package loan

import (
	"time"

	domain "chama-ledger/internal/domain/loan"
)

type CreateLoanInput struct {
	MemberID     string   `json:"member_id"`
	Principal    int64    `json:"principal"`
	InterestRate float64  `json:"interest_rate"`
	TermMonths   int      `json:"term_months"`
	Purpose      string   `json:"purpose"`
	Guarantors   []string `json:"guarantors"`
}

type RepaymentInput struct {
	LoanID     string
	Amount     int64
	Method     string
	Reference  string
	RecordedBy string
}

type RepaymentDTO struct {
	Seq        int       `json:"seq"`
	Amount     int64     `json:"amount"`
	PaidAt     time.Time `json:"paid_at"`
	Method     string    `json:"method"`
	Reference  string    `json:"reference,omitempty"`
	RecordedBy string    `json:"recorded_by,omitempty"`
}

type GuarantorDTO struct {
	MemberID string `json:"member_id"`
	Approved bool   `json:"approved"`
}

type LoanDTO struct {
	LoanID           string         `json:"loan_id"`
	MemberID         string         `json:"member_id"`
	Principal        int64          `json:"principal"`
	InterestRate     float64        `json:"interest_rate"`
	TermMonths       int            `json:"term_months"`
	MonthlyPayment   int64          `json:"monthly_payment"`
	Purpose          string         `json:"purpose,omitempty"`
	Notes            string         `json:"notes,omitempty"`
	Status           string         `json:"status"`
	ApplicationDate  time.Time      `json:"application_date"`
	ApprovalDate     *time.Time     `json:"approval_date,omitempty"`
	ApprovedBy       string         `json:"approved_by,omitempty"`
	DisbursementDate *time.Time     `json:"disbursement_date,omitempty"`
	NextPaymentDate  *time.Time     `json:"next_payment_date,omitempty"`
	TotalRepaid      int64          `json:"total_repaid"`
	RemainingBalance int64          `json:"remaining_balance"`
	Repayments       []RepaymentDTO `json:"repayments"`
	Guarantors       []GuarantorDTO `json:"guarantors"`
}

type ScheduleDTO struct {
	LoanID         string               `json:"loan_id"`
	MonthlyPayment int64                `json:"monthly_payment"`
	StartDate      time.Time            `json:"start_date"`
	Installments   []domain.Installment `json:"installments"`
}

func ToDTO(l *domain.Loan) *LoanDTO {
	dto := &LoanDTO{
		LoanID:           l.LoanID,
		MemberID:         l.MemberID,
		Principal:        l.Principal,
		InterestRate:     l.InterestRate,
		TermMonths:       l.TermMonths,
		MonthlyPayment:   l.MonthlyPayment,
		Purpose:          l.Purpose,
		Notes:            l.Notes,
		Status:           string(l.Status),
		ApplicationDate:  l.ApplicationDate,
		ApprovalDate:     l.ApprovalDate,
		ApprovedBy:       l.ApprovedBy,
		DisbursementDate: l.DisbursementDate,
		NextPaymentDate:  l.NextPaymentDate,
		TotalRepaid:      l.TotalRepaid,
		RemainingBalance: l.RemainingBalance,
		Repayments:       make([]RepaymentDTO, 0, len(l.Repayments)),
		Guarantors:       make([]GuarantorDTO, 0, len(l.Guarantors)),
	}
	for _, r := range l.Repayments {
		dto.Repayments = append(dto.Repayments, RepaymentDTO{
			Seq: r.Seq, Amount: r.Amount, PaidAt: r.PaidAt,
			Method: r.Method, Reference: r.Reference, RecordedBy: r.RecordedBy,
		})
	}
	for _, g := range l.Guarantors {
		dto.Guarantors = append(dto.Guarantors, GuarantorDTO{MemberID: g.MemberID, Approved: g.Approved})
	}
	return dto
}
