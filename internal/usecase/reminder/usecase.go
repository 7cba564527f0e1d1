package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chama-ledger/internal/domain/loan"
	"chama-ledger/internal/domain/notification"
	"chama-ledger/internal/infrastructure/messaging"
	"chama-ledger/pkg/id"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// dueNamespace seeds payment_due event ids so a loan gets one reminder per
// instalment no matter how often the scan runs.
var dueNamespace = uuid.MustParse("6f1d2c4e-8a0b-4c57-9b1e-3f6a2d9e7c10")

type Usecase struct {
	loans         loan.Repository
	notifications notification.Repository
	notifier      loan.Notifier
	log           *zap.Logger
	now           func() time.Time
}

type Option func(*Usecase)

func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

func NewUsecase(loans loan.Repository, notifications notification.Repository, notifier loan.Notifier, log *zap.Logger, opts ...Option) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	u := &Usecase{
		loans:         loans,
		notifications: notifications,
		notifier:      notifier,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// ScanDue emits a payment_due event for every active loan with an instalment
// due on or before now+window. It returns how many events were emitted.
func (u *Usecase) ScanDue(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	cutoff := now.UTC().Add(window)
	due, err := u.loans.ListDue(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list due loans: %w", err)
	}

	sent := 0
	for i := range due {
		ev, ok := due[i].PaymentDue(cutoff)
		if !ok {
			continue
		}
		ev.ID = dueEventID(ev)
		if u.notifier != nil {
			if err := u.notifier.Notify(ctx, ev); err != nil {
				u.log.Warn("payment due notify failed", zap.String("loan_id", ev.LoanID), zap.Error(err))
				continue
			}
		}
		sent++
	}
	u.log.Info("due scan finished", zap.Int("due", len(due)), zap.Int("sent", sent), zap.Time("cutoff", cutoff))
	return sent, nil
}

func dueEventID(ev loan.Event) string {
	name := ev.LoanID
	if ev.DueDate != nil {
		name += "|" + ev.DueDate.UTC().Format("2006-01-02")
	}
	return uuid.NewSHA1(dueNamespace, []byte(name)).String()
}

// HandleEvent records a notification for one delivered ledger event. A
// redelivered event is acknowledged without writing a second row.
func (u *Usecase) HandleEvent(ctx context.Context, body []byte) error {
	var ev loan.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", messaging.ErrMalformed, err)
	}
	if ev.ID == "" || ev.LoanID == "" || ev.Type == "" {
		return fmt.Errorf("%w: event missing id, type or loan", messaging.ErrMalformed)
	}

	n := build(ev, u.now())
	if err := u.notifications.Create(ctx, n); err != nil {
		if errors.Is(err, notification.ErrDuplicate) {
			u.log.Debug("notification already recorded", zap.String("event_id", ev.ID))
			return nil
		}
		return err
	}
	u.log.Info("notification recorded",
		zap.String("notification_id", n.NotificationID),
		zap.String("event_id", ev.ID),
		zap.String("type", string(n.Type)),
		zap.String("loan_id", n.LoanID))
	return nil
}

// Recent lists a member's newest notifications.
func (u *Usecase) Recent(ctx context.Context, memberID string, limit int) ([]notification.Notification, error) {
	if memberID == "" {
		return nil, loan.Wrap("notifications", "", loan.ErrInvalidArgument)
	}
	switch {
	case limit <= 0:
		limit = 20
	case limit > 100:
		limit = 100
	}
	return u.notifications.ListByMember(ctx, memberID, limit)
}

// build renders the member-facing message. An instalment still ahead of now
// is a payment_reminder; one already due is loan_due.
func build(ev loan.Event, now time.Time) *notification.Notification {
	n := &notification.Notification{
		NotificationID: id.NewID32(),
		EventID:        ev.ID,
		Type:           notification.TypeLoanUpdate,
		MemberID:       ev.MemberID,
		LoanID:         ev.LoanID,
		Channel:        "sms",
		Status:         notification.StatusPending,
		Priority:       notification.PriorityMedium,
	}
	switch ev.Type {
	case loan.EventPaymentDue:
		n.Type = notification.TypeLoanDue
		n.Title = "Loan payment due"
		n.Priority = notification.PriorityHigh
		due := "now"
		if ev.DueDate != nil {
			due = "on " + ev.DueDate.UTC().Format("2006-01-02")
			n.ScheduledFor = ev.DueDate
			if ev.DueDate.After(now) {
				n.Type = notification.TypePaymentReminder
				n.Title = "Upcoming loan payment"
				n.Priority = notification.PriorityMedium
			}
		}
		n.Message = fmt.Sprintf("An instalment of %d is due %s for loan %s. Outstanding balance: %d.",
			ev.Amount, due, ev.LoanID, ev.Balance)
	case loan.EventApplied:
		n.Title = "Loan application received"
		n.Message = fmt.Sprintf("Your application %s is pending approval.", ev.LoanID)
	case loan.EventApproved:
		n.Title = "Loan approved"
		n.Message = fmt.Sprintf("Loan %s has been approved.", ev.LoanID)
	case loan.EventRejected:
		n.Title = "Loan rejected"
		n.Priority = notification.PriorityHigh
		n.Message = fmt.Sprintf("Loan %s was not approved.", ev.LoanID)
	case loan.EventDisbursed:
		n.Title = "Loan disbursed"
		n.Message = fmt.Sprintf("Loan %s has been disbursed. Balance: %d.", ev.LoanID, ev.Balance)
	case loan.EventRepaymentRecorded:
		n.Title = "Repayment received"
		n.Message = fmt.Sprintf("We received %d for loan %s. Remaining balance: %d.", ev.Amount, ev.LoanID, ev.Balance)
	case loan.EventCompleted:
		n.Title = "Loan fully repaid"
		n.Message = fmt.Sprintf("Loan %s is fully repaid.", ev.LoanID)
	case loan.EventDefaulted:
		n.Title = "Loan in default"
		n.Priority = notification.PriorityUrgent
		n.Message = fmt.Sprintf("Loan %s has been marked as defaulted. Outstanding balance: %d.", ev.LoanID, ev.Balance)
	default:
		n.Title = "Loan update"
		n.Message = fmt.Sprintf("Loan %s: %s.", ev.LoanID, ev.Type)
	}
	return n
}
