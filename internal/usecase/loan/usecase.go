package loan

import (
	"context"
	"errors"
	"time"

	domain "chama-ledger/internal/domain/loan"
	"chama-ledger/internal/domain/uow"
	"chama-ledger/pkg/id"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Usecase struct {
	uow      uow.UnitOfWork
	repo     domain.Repository
	notifier domain.Notifier
	log      *zap.Logger
	now      func() time.Time
	retries  int
	backoff  time.Duration
}

type Option func(*Usecase)

func WithLogger(l *zap.Logger) Option { return func(u *Usecase) { u.log = l } }

func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

// WithRetry bounds how often a revision conflict is retried; the wait doubles from backoff.
func WithRetry(retries int, backoff time.Duration) Option {
	return func(u *Usecase) { u.retries, u.backoff = retries, backoff }
}

// NewUsecase wires the ledger operations. notifier may be nil.
func NewUsecase(tx uow.UnitOfWork, repo domain.Repository, notifier domain.Notifier, opts ...Option) *Usecase {
	u := &Usecase{
		uow:      tx,
		repo:     repo,
		notifier: notifier,
		log:      zap.NewNop(),
		now:      func() time.Time { return time.Now().UTC() },
		retries:  3,
		backoff:  20 * time.Millisecond,
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

func (u *Usecase) Create(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	l, evs, err := domain.New(domain.Application{
		LoanID:       id.NewID32(),
		MemberID:     in.MemberID,
		Principal:    in.Principal,
		InterestRate: in.InterestRate,
		TermMonths:   in.TermMonths,
		Purpose:      in.Purpose,
		Guarantors:   in.Guarantors,
	}, u.now())
	if err != nil {
		return nil, err
	}
	if err := u.repo.Create(ctx, l); err != nil {
		return nil, domain.Wrap("create", l.LoanID, err)
	}
	u.log.Info("loan applied",
		zap.String("loan_id", l.LoanID),
		zap.String("member_id", l.MemberID),
		zap.Int64("principal", l.Principal))
	u.publish(ctx, evs)
	return ToDTO(l), nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, domain.Wrap("get", loanID, err)
	}
	return ToDTO(l), nil
}

func (u *Usecase) ListByMember(ctx context.Context, memberID string) ([]LoanDTO, error) {
	if memberID == "" {
		return nil, domain.Wrap("list", "", domain.ErrInvalidArgument)
	}
	rows, err := u.repo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out, nil
}

// Schedule projects the amortization table from the disbursement date, or
// from the application date for loans not yet disbursed.
func (u *Usecase) Schedule(ctx context.Context, loanID string) (*ScheduleDTO, error) {
	l, err := u.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, domain.Wrap("schedule", loanID, err)
	}
	start := l.ApplicationDate
	if l.DisbursementDate != nil {
		start = *l.DisbursementDate
	}
	rows, err := domain.BuildSchedule(l.Principal, l.InterestRate, l.TermMonths, start)
	if err != nil {
		return nil, domain.Wrap("schedule", loanID, err)
	}
	return &ScheduleDTO{LoanID: l.LoanID, MonthlyPayment: l.MonthlyPayment, StartDate: start, Installments: rows}, nil
}

func (u *Usecase) Disburse(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.Mutate(ctx, "disburse", loanID, func(_ uow.Repos, l *domain.Loan, now time.Time) ([]domain.Event, error) {
		return l.Disburse(now)
	})
	if err != nil {
		return nil, err
	}
	return ToDTO(l), nil
}

func (u *Usecase) RecordRepayment(ctx context.Context, in RepaymentInput) (*LoanDTO, error) {
	l, err := u.Mutate(ctx, "repay", in.LoanID, func(_ uow.Repos, l *domain.Loan, now time.Time) ([]domain.Event, error) {
		return l.RecordRepayment(domain.RepaymentInput{
			Amount:     in.Amount,
			Method:     in.Method,
			Reference:  in.Reference,
			RecordedBy: in.RecordedBy,
		}, now)
	})
	if err != nil {
		return nil, err
	}
	return ToDTO(l), nil
}

func (u *Usecase) MarkDefaulted(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.Mutate(ctx, "default", loanID, func(_ uow.Repos, l *domain.Loan, now time.Time) ([]domain.Event, error) {
		return l.MarkDefaulted(now)
	})
	if err != nil {
		return nil, err
	}
	return ToDTO(l), nil
}

// MutateFunc changes l in memory and returns the events to publish once the change commits.
type MutateFunc func(r uow.Repos, l *domain.Loan, now time.Time) ([]domain.Event, error)

// Mutate runs fn against the locked loan, saves it and publishes the events.
func (u *Usecase) Mutate(ctx context.Context, op, loanID string, fn MutateFunc) (*domain.Loan, error) {
	return u.MutateThen(ctx, op, loanID, fn, nil)
}

// MutateThen is Mutate with a hook that runs in the same unit of work after
// the loan is saved, for records that must only exist once the loan changed.
// Revision conflicts rerun the whole unit with exponential backoff.
func (u *Usecase) MutateThen(ctx context.Context, op, loanID string, fn MutateFunc, then func(r uow.Repos, l *domain.Loan) error) (*domain.Loan, error) {
	var (
		out *domain.Loan
		evs []domain.Event
	)
	for attempt := 0; ; attempt++ {
		err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
			e, err := fn(r, l, u.now())
			if err != nil {
				return err
			}
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			if then != nil {
				if err := then(r, l); err != nil {
					return err
				}
			}
			out, evs = l, e
			return nil
		})
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConflict) || attempt >= u.retries {
			return nil, domain.Wrap(op, loanID, err)
		}

		wait := u.backoff << attempt
		u.log.Debug("revision conflict, retrying",
			zap.String("op", op),
			zap.String("loan_id", loanID),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait))
		select {
		case <-ctx.Done():
			return nil, domain.Wrap(op, loanID, ctx.Err())
		case <-time.After(wait):
		}
	}

	u.log.Info("loan updated",
		zap.String("op", op),
		zap.String("loan_id", out.LoanID),
		zap.String("status", string(out.Status)),
		zap.Int64("remaining_balance", out.RemainingBalance),
		zap.Int64("revision", out.Revision))
	u.publish(ctx, evs)
	return out, nil
}

// publish hands events to the notifier. Failures are logged and never reach the caller.
func (u *Usecase) publish(ctx context.Context, evs []domain.Event) {
	if u.notifier == nil {
		return
	}
	for _, ev := range evs {
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		if err := u.notifier.Notify(ctx, ev); err != nil {
			u.log.Warn("notify failed",
				zap.String("event_id", ev.ID),
				zap.String("type", string(ev.Type)),
				zap.String("loan_id", ev.LoanID),
				zap.Error(err))
		}
	}
}
