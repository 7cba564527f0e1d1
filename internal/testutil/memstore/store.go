// Package memstore is an in-memory ledger store for use-case tests. It keeps
// the storage contract of the real adapters: copies in and out, revision
// checked saves, and a per-loan lock held for the length of WithinLoanTx.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"chama-ledger/internal/domain/approval"
	"chama-ledger/internal/domain/loan"
	"chama-ledger/internal/domain/notification"
	"chama-ledger/internal/domain/uow"
)

var (
	_ loan.Repository         = (*Loans)(nil)
	_ approval.Repository     = (*Approvals)(nil)
	_ notification.Repository = (*Notifications)(nil)
	_ uow.UnitOfWork          = (*Store)(nil)
)

type Store struct {
	Loans         *Loans
	Approvals     *Approvals
	Notifications *Notifications

	// Optimistic skips the per-loan lock so concurrent writers race on the
	// revision check instead, as with the MongoDB backend.
	Optimistic bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New() *Store {
	return &Store{
		Loans:         &Loans{rows: map[string]loan.Loan{}},
		Approvals:     &Approvals{rows: map[string]approval.Approval{}},
		Notifications: &Notifications{byEvent: map[string]bool{}},
		locks:         map[string]*sync.Mutex{},
	}
}

func (s *Store) repos() uow.Repos {
	return uow.Repos{Loans: s.Loans, Approvals: s.Approvals}
}

func (s *Store) lock(loanID string) func() {
	if s.Optimistic {
		return func() {}
	}
	s.mu.Lock()
	m, ok := s.locks[loanID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[loanID] = m
	}
	s.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// WithinTx does not roll back; tests that need rollback use the sqlite adapter.
func (s *Store) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return fn(s.repos())
}

func (s *Store) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	unlock := s.lock(loanID)
	defer unlock()

	l, err := s.Loans.GetByLoanIDForUpdate(ctx, loanID)
	if err != nil {
		return err
	}
	return fn(s.repos(), l)
}

type Loans struct {
	mu     sync.Mutex
	rows   map[string]loan.Loan
	nextID uint64
}

func clone(l loan.Loan) loan.Loan {
	l.Repayments = append([]loan.Repayment(nil), l.Repayments...)
	l.Guarantors = append([]loan.Guarantor(nil), l.Guarantors...)
	return l
}

// Put stores l as-is, bypassing revision checks. For seeding.
func (r *Loans) Put(l *loan.Loan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == 0 {
		r.nextID++
		l.ID = r.nextID
	}
	r.rows[l.LoanID] = clone(*l)
}

func (r *Loans) Create(ctx context.Context, l *loan.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[l.LoanID]; ok {
		return loan.Wrap("create", l.LoanID, loan.ErrConflict)
	}
	r.nextID++
	l.ID = r.nextID
	now := time.Now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now
	r.rows[l.LoanID] = clone(*l)
	return nil
}

func (r *Loans) GetByLoanID(ctx context.Context, loanID string) (*loan.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.rows[loanID]
	if !ok {
		return nil, loan.Wrap("get", loanID, loan.ErrNotFound)
	}
	out := clone(l)
	return &out, nil
}

func (r *Loans) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loan.Loan, error) {
	return r.GetByLoanID(ctx, loanID)
}

func (r *Loans) ListByMember(ctx context.Context, memberID string) ([]loan.Loan, error) {
	return r.List(ctx, memberID)
}

func (r *Loans) List(ctx context.Context, memberID string) ([]loan.Loan, error) {
	return r.filter(func(l loan.Loan) bool { return memberID == "" || l.MemberID == memberID }), nil
}

func (r *Loans) ListDue(ctx context.Context, cutoff time.Time) ([]loan.Loan, error) {
	return r.filter(func(l loan.Loan) bool {
		return l.Status == loan.StatusActive && l.NextPaymentDate != nil && !l.NextPaymentDate.After(cutoff)
	}), nil
}

func (r *Loans) filter(keep func(loan.Loan) bool) []loan.Loan {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []loan.Loan{}
	for _, l := range r.rows {
		if keep(l) {
			out = append(out, clone(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Loans) Save(ctx context.Context, l *loan.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[l.LoanID]
	if !ok {
		return loan.Wrap("save", l.LoanID, loan.ErrNotFound)
	}
	if cur.Revision != l.Revision {
		return loan.Wrap("save", l.LoanID, loan.ErrConflict)
	}
	l.Revision++
	l.UpdatedAt = time.Now().UTC()
	r.rows[l.LoanID] = clone(*l)
	return nil
}

type Approvals struct {
	mu   sync.Mutex
	rows map[string]approval.Approval // by loan id
}

func (r *Approvals) Create(ctx context.Context, a *approval.Approval) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[a.LoanID]; ok {
		return approval.ErrAlreadyDecided
	}
	r.rows[a.LoanID] = *a
	return nil
}

func (r *Approvals) GetByLoanID(ctx context.Context, loanID string) (*approval.Approval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[loanID]
	if !ok {
		return nil, approval.ErrNotFound
	}
	return &a, nil
}

func (r *Approvals) GetByApprovalID(ctx context.Context, approvalID string) (*approval.Approval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.rows {
		if a.ApprovalID == approvalID {
			return &a, nil
		}
	}
	return nil, approval.ErrNotFound
}

type Notifications struct {
	mu      sync.Mutex
	rows    []notification.Notification
	byEvent map[string]bool
}

func (r *Notifications) Create(ctx context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byEvent[n.EventID] {
		return notification.ErrDuplicate
	}
	r.byEvent[n.EventID] = true
	r.rows = append(r.rows, *n)
	return nil
}

func (r *Notifications) ListByMember(ctx context.Context, memberID string, limit int) ([]notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []notification.Notification{}
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].MemberID == memberID {
			out = append(out, r.rows[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Recorder is a loan.Notifier that keeps every event.
type Recorder struct {
	mu     sync.Mutex
	Events []loan.Event
	Err    error
}

func (r *Recorder) Notify(ctx context.Context, ev loan.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, ev)
	return r.Err
}

func (r *Recorder) Types() []loan.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]loan.EventType, len(r.Events))
	for i, ev := range r.Events {
		out[i] = ev.Type
	}
	return out
}
