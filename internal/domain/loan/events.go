package loan

import (
	"context"
	"time"
)

type EventType string

const (
	EventApplied           EventType = "loan.applied"
	EventApproved          EventType = "loan.approved"
	EventRejected          EventType = "loan.rejected"
	EventDisbursed         EventType = "loan.disbursed"
	EventRepaymentRecorded EventType = "loan.repayment_recorded"
	EventCompleted         EventType = "loan.completed"
	EventDefaulted         EventType = "loan.defaulted"
	EventPaymentDue        EventType = "loan.payment_due"
)

// Event is what the ledger signals to the Notifier after a committed change.
type Event struct {
	ID         string     `json:"event_id"`
	Type       EventType  `json:"type"`
	LoanID     string     `json:"loan_id"`
	MemberID   string     `json:"member_id"`
	Status     Status     `json:"status"`
	Amount     int64      `json:"amount,omitempty"`
	Balance    int64      `json:"balance"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// Notifier receives ledger events. Delivery is fire-and-forget: the ledger
// never waits on or reacts to the outcome.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

func (l *Loan) event(t EventType, amount int64, at time.Time) Event {
	return Event{
		Type:       t,
		LoanID:     l.LoanID,
		MemberID:   l.MemberID,
		Status:     l.Status,
		Amount:     amount,
		Balance:    l.RemainingBalance,
		DueDate:    l.NextPaymentDate,
		OccurredAt: at,
	}
}
