package loan

import (
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusDefaulted Status = "defaulted"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{
	StatusPending, StatusApproved, StatusRejected,
	StatusActive, StatusCompleted, StatusDefaulted,
}

// Table: loans. Money columns are integer minor units.
type Loan struct {
	// Internal numeric PK (SQL only)
	ID uint64 `gorm:"primaryKey;column:id" json:"-" bson:"-"`
	// Public identifier (32-char lowercase hex)
	LoanID           string      `gorm:"column:loan_id;size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id" bson:"_id"`
	MemberID         string      `gorm:"column:member_id;size:64;not null;index:idx_loans_member_status" json:"member_id" bson:"member_id"`
	Principal        int64       `gorm:"column:principal;not null" json:"principal" bson:"principal"`
	InterestRate     float64     `gorm:"column:interest_rate;not null" json:"interest_rate" bson:"interest_rate"`
	TermMonths       int         `gorm:"column:term_months;not null" json:"term_months" bson:"term_months"`
	MonthlyPayment   int64       `gorm:"column:monthly_payment;not null" json:"monthly_payment" bson:"monthly_payment"`
	Purpose          string      `gorm:"column:purpose;type:text" json:"purpose,omitempty" bson:"purpose,omitempty"`
	Notes            string      `gorm:"column:notes;type:text" json:"notes,omitempty" bson:"notes,omitempty"`
	Status           Status      `gorm:"column:status;size:16;not null;index:idx_loans_member_status;index:idx_loans_status" json:"status" bson:"status"`
	ApplicationDate  time.Time   `gorm:"column:application_date;not null" json:"application_date" bson:"application_date"`
	ApprovalDate     *time.Time  `gorm:"column:approval_date" json:"approval_date,omitempty" bson:"approval_date,omitempty"`
	ApprovedBy       string      `gorm:"column:approved_by;size:64" json:"approved_by,omitempty" bson:"approved_by,omitempty"`
	DisbursementDate *time.Time  `gorm:"column:disbursement_date" json:"disbursement_date,omitempty" bson:"disbursement_date,omitempty"`
	NextPaymentDate  *time.Time  `gorm:"column:next_payment_date;index:idx_loans_next_payment" json:"next_payment_date,omitempty" bson:"next_payment_date,omitempty"`
	TotalRepaid      int64       `gorm:"column:total_repaid;not null;default:0" json:"total_repaid" bson:"total_repaid"`
	RemainingBalance int64       `gorm:"column:remaining_balance;not null" json:"remaining_balance" bson:"remaining_balance"`
	Revision         int64       `gorm:"column:revision;not null;default:0" json:"revision" bson:"revision"`
	Repayments       []Repayment `gorm:"foreignKey:LoanRefID;references:ID" json:"repayments" bson:"repayments"`
	Guarantors       []Guarantor `gorm:"foreignKey:LoanRefID;references:ID" json:"guarantors" bson:"guarantors"`
	CreatedAt        time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at" bson:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// Table: loan_repayments. Append-only; Seq orders the ledger.
type Repayment struct {
	ID         uint64    `gorm:"primaryKey;column:id" json:"-" bson:"-"`
	LoanRefID  uint64    `gorm:"column:loan_ref_id;not null;uniqueIndex:ux_repayments_loan_seq" json:"-" bson:"-"`
	Seq        int       `gorm:"column:seq;not null;uniqueIndex:ux_repayments_loan_seq" json:"seq" bson:"seq"`
	Amount     int64     `gorm:"column:amount;not null" json:"amount" bson:"amount"`
	PaidAt     time.Time `gorm:"column:paid_at;not null;index" json:"paid_at" bson:"paid_at"`
	Method     string    `gorm:"column:method;size:32" json:"method" bson:"method"`
	Reference  string    `gorm:"column:reference;size:64" json:"reference,omitempty" bson:"reference,omitempty"`
	RecordedBy string    `gorm:"column:recorded_by;size:64" json:"recorded_by,omitempty" bson:"recorded_by,omitempty"`
}

func (Repayment) TableName() string { return "loan_repayments" }

// Table: loan_guarantors. Informational only.
type Guarantor struct {
	ID        uint64 `gorm:"primaryKey;column:id" json:"-" bson:"-"`
	LoanRefID uint64 `gorm:"column:loan_ref_id;not null;index" json:"-" bson:"-"`
	MemberID  string `gorm:"column:member_id;size:64;not null" json:"member_id" bson:"member_id"`
	Approved  bool   `gorm:"column:approved;not null;default:false" json:"approved" bson:"approved"`
}

func (Guarantor) TableName() string { return "loan_guarantors" }
