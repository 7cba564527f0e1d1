package loan

import (
	"strings"
	"time"
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusActive},
	StatusActive:   {StatusCompleted, StatusDefaulted},
}

// CanTransitionTo is the single source of truth for the loan lifecycle.
func (s Status) CanTransitionTo(next Status) bool {
	for _, to := range transitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool { return len(transitions[s]) == 0 }

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Application is the input to New.
type Application struct {
	LoanID       string
	MemberID     string
	Principal    int64
	InterestRate float64
	TermMonths   int
	Purpose      string
	Guarantors   []string
}

// New builds a pending loan with its monthly payment fixed at application time.
func New(in Application, now time.Time) (*Loan, []Event, error) {
	if strings.TrimSpace(in.MemberID) == "" {
		return nil, nil, opErr("create", in.LoanID, ErrInvalidArgument, "member id is required")
	}
	payment, err := MonthlyPayment(in.Principal, in.InterestRate, in.TermMonths)
	if err != nil {
		return nil, nil, Wrap("create", in.LoanID, err)
	}

	l := &Loan{
		LoanID:          in.LoanID,
		MemberID:        in.MemberID,
		Principal:       in.Principal,
		InterestRate:    in.InterestRate,
		TermMonths:      in.TermMonths,
		MonthlyPayment:  payment,
		Purpose:         in.Purpose,
		Status:          StatusPending,
		ApplicationDate: now.UTC(),
		Repayments:      []Repayment{},
		Guarantors:      make([]Guarantor, 0, len(in.Guarantors)),
	}
	for _, g := range in.Guarantors {
		l.Guarantors = append(l.Guarantors, Guarantor{MemberID: g})
	}
	l.recompute()
	return l, []Event{l.event(EventApplied, l.Principal, now.UTC())}, nil
}

// recompute derives every stored field that depends on the repayment ledger.
func (l *Loan) recompute() {
	l.RemainingBalance = l.Principal - l.TotalRepaid
}

func (l *Loan) transition(op string, next Status) error {
	if !l.Status.CanTransitionTo(next) {
		return opErr(op, l.LoanID, ErrInvalidState, "cannot move from %s to %s", l.Status, next)
	}
	l.Status = next
	return nil
}

func (l *Loan) Approve(approverID string, now time.Time) ([]Event, error) {
	if strings.TrimSpace(approverID) == "" {
		return nil, opErr("approve", l.LoanID, ErrInvalidArgument, "approver id is required")
	}
	if err := l.transition("approve", StatusApproved); err != nil {
		return nil, err
	}
	at := now.UTC()
	l.ApprovalDate = &at
	l.ApprovedBy = approverID
	return []Event{l.event(EventApproved, 0, at)}, nil
}

func (l *Loan) Reject(approverID, reason string, now time.Time) ([]Event, error) {
	if strings.TrimSpace(approverID) == "" {
		return nil, opErr("reject", l.LoanID, ErrInvalidArgument, "approver id is required")
	}
	if err := l.transition("reject", StatusRejected); err != nil {
		return nil, err
	}
	if reason != "" {
		l.Notes = reason
	}
	return []Event{l.event(EventRejected, 0, now.UTC())}, nil
}

func (l *Loan) Disburse(now time.Time) ([]Event, error) {
	if err := l.transition("disburse", StatusActive); err != nil {
		return nil, err
	}
	at := now.UTC()
	next := AddMonth(at)
	l.DisbursementDate = &at
	l.NextPaymentDate = &next
	return []Event{l.event(EventDisbursed, l.Principal, at)}, nil
}

func (l *Loan) MarkDefaulted(now time.Time) ([]Event, error) {
	if err := l.transition("default", StatusDefaulted); err != nil {
		return nil, err
	}
	return []Event{l.event(EventDefaulted, 0, now.UTC())}, nil
}

// RepaymentInput describes one payment against a loan.
type RepaymentInput struct {
	Amount     int64
	Method     string
	Reference  string
	RecordedBy string
}

// RecordRepayment validates everything before touching the loan, so a failed
// call leaves it exactly as it was.
func (l *Loan) RecordRepayment(in RepaymentInput, now time.Time) ([]Event, error) {
	const op = "repay"
	if in.Amount <= 0 {
		return nil, opErr(op, l.LoanID, ErrInvalidArgument, "amount must be positive, got %d", in.Amount)
	}
	switch l.Status {
	case StatusActive, StatusApproved:
	default:
		return nil, opErr(op, l.LoanID, ErrInvalidState, "loan is %s", l.Status)
	}
	if in.Amount > l.RemainingBalance {
		return nil, opErr(op, l.LoanID, ErrExceedsBalance, "amount %d, remaining %d", in.Amount, l.RemainingBalance)
	}

	at := now.UTC()
	var events []Event
	if l.Status == StatusApproved {
		evs, err := l.Disburse(at)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}

	l.Repayments = append(l.Repayments, Repayment{
		Seq:        len(l.Repayments) + 1,
		Amount:     in.Amount,
		PaidAt:     at,
		Method:     in.Method,
		Reference:  in.Reference,
		RecordedBy: in.RecordedBy,
	})
	l.TotalRepaid += in.Amount
	l.recompute()

	if l.RemainingBalance == 0 {
		l.Status = StatusCompleted
	} else {
		next := AddMonth(at)
		l.NextPaymentDate = &next
	}

	events = append(events, l.event(EventRepaymentRecorded, in.Amount, at))
	if l.Status == StatusCompleted {
		events = append(events, l.event(EventCompleted, 0, at))
	}
	return events, nil
}

// PaymentDue reports whether an active loan's next instalment falls on or
// before cutoff. It only informs reminders and never changes status.
func (l *Loan) PaymentDue(cutoff time.Time) (Event, bool) {
	if l.Status != StatusActive || l.NextPaymentDate == nil || l.NextPaymentDate.After(cutoff) {
		return Event{}, false
	}
	return l.event(EventPaymentDue, min(l.MonthlyPayment, l.RemainingBalance), cutoff.UTC()), true
}

// Consistent checks the ledger invariants of a loan.
func (l *Loan) Consistent() bool {
	var sum int64
	for _, r := range l.Repayments {
		sum += r.Amount
	}
	return sum == l.TotalRepaid &&
		l.TotalRepaid <= l.Principal &&
		l.RemainingBalance == l.Principal-l.TotalRepaid
}
