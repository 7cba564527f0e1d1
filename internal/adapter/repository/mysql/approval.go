package mysql

import (
	"context"
	"errors"

	approvalDomain "chama-ledger/internal/domain/approval"

	"gorm.io/gorm"
)

type ApprovalRepository struct{ db *gorm.DB }

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository { return &ApprovalRepository{db: db} }

func (r *ApprovalRepository) Create(ctx context.Context, a *approvalDomain.Approval) error {
	err := r.db.WithContext(ctx).Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return approvalDomain.ErrAlreadyDecided
	}
	return err
}

func (r *ApprovalRepository) GetByLoanID(ctx context.Context, loanID string) (*approvalDomain.Approval, error) {
	return r.first(ctx, "loan_id = ?", loanID)
}

func (r *ApprovalRepository) GetByApprovalID(ctx context.Context, approvalID string) (*approvalDomain.Approval, error) {
	return r.first(ctx, "approval_id = ?", approvalID)
}

func (r *ApprovalRepository) first(ctx context.Context, where string, arg any) (*approvalDomain.Approval, error) {
	var out approvalDomain.Approval
	err := r.db.WithContext(ctx).Where(where, arg).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, approvalDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
