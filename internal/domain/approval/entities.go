package approval

import (
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("approval decision not found")
	ErrAlreadyDecided = errors.New("loan already has a decision")
)

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Table: loan_decisions. At most one per loan, enforced by the unique index.
type Approval struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-" bson:"-"`
	// Public identifier (32-char lowercase hex)
	ApprovalID string `gorm:"column:approval_id;size:32;not null;uniqueIndex:ux_decisions_approval_id" json:"approval_id" bson:"_id"`
	// FK to loans.id (numeric); mongo keys by public loan id instead
	LoanRefID uint64    `gorm:"column:loan_ref_id;not null;uniqueIndex:ux_decisions_loan" json:"-" bson:"-"`
	LoanID    string    `gorm:"column:loan_id;size:32;not null;index" json:"loan_id" bson:"loan_id"`
	Decision  Decision  `gorm:"column:decision;size:16;not null" json:"decision" bson:"decision"`
	DecidedBy string    `gorm:"column:decided_by;size:64;not null" json:"decided_by" bson:"decided_by"`
	Reason    string    `gorm:"column:reason;type:text" json:"reason,omitempty" bson:"reason,omitempty"`
	DecidedAt time.Time `gorm:"column:decided_at;not null" json:"decided_at" bson:"decided_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at" bson:"created_at"`
}

func (Approval) TableName() string { return "loan_decisions" }
