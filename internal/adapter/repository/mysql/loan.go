package mysql

import (
	"context"
	"errors"
	"time"

	loanDomain "chama-ledger/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

// Create inserts the loan together with its guarantors and any repayments.
func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	err := r.db.WithContext(ctx).Create(l).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return loanDomain.Wrap("create", l.LoanID, loanDomain.ErrConflict)
	}
	return err
}

func (r *LoanRepository) withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Repayments", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Preload("Guarantors", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func (r *LoanRepository) get(db *gorm.DB, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := r.withChildren(db).Where("loan_id = ?", loanID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanDomain.Wrap("get", loanID, loanDomain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	return r.get(r.db.WithContext(ctx), loanID)
}

// GetByLoanIDForUpdate takes a row lock (SELECT ... FOR UPDATE) that lasts until
// the surrounding transaction ends. SQLite ignores the clause; its single
// writer connection serialises instead.
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), loanID)
}

func (r *LoanRepository) ListByMember(ctx context.Context, memberID string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.withChildren(r.db.WithContext(ctx)).
		Where("member_id = ?", memberID).
		Order("application_date DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *LoanRepository) List(ctx context.Context, memberID string) ([]loanDomain.Loan, error) {
	q := r.withChildren(r.db.WithContext(ctx))
	if memberID != "" {
		q = q.Where("member_id = ?", memberID)
	}
	var out []loanDomain.Loan
	err := q.Order("id ASC").Find(&out).Error
	return out, err
}

func (r *LoanRepository) ListDue(ctx context.Context, cutoff time.Time) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_payment_date IS NOT NULL AND next_payment_date <= ?", loanDomain.StatusActive, cutoff).
		Order("next_payment_date ASC, id ASC").
		Find(&out).Error
	return out, err
}

// Save writes the loan's mutable columns guarded by its revision and appends
// repayments that have not been stored yet.
func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&loanDomain.Loan{}).
			Where("id = ? AND revision = ?", l.ID, l.Revision).
			Updates(map[string]any{
				"status":            l.Status,
				"notes":             l.Notes,
				"approval_date":     l.ApprovalDate,
				"approved_by":       l.ApprovedBy,
				"disbursement_date": l.DisbursementDate,
				"next_payment_date": l.NextPaymentDate,
				"total_repaid":      l.TotalRepaid,
				"remaining_balance": l.RemainingBalance,
				"revision":          l.Revision + 1,
				"updated_at":        now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return loanDomain.Wrap("save", l.LoanID, loanDomain.ErrConflict)
		}

		for i := range l.Repayments {
			rp := &l.Repayments[i]
			if rp.ID != 0 {
				continue
			}
			rp.LoanRefID = l.ID
			if err := tx.Create(rp).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return loanDomain.Wrap("save", l.LoanID, loanDomain.ErrConflict)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	l.Revision++
	l.UpdatedAt = now
	return nil
}
