package mysql

import (
	"path/filepath"
	"testing"
	"time"

	loanDomain "chama-ledger/internal/domain/loan"
	infradb "chama-ledger/internal/infrastructure/db"
	"chama-ledger/pkg/id"

	"gorm.io/gorm"
)

var t0 = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

// openTestDB creates a file-backed sqlite DB in a temp dir with the full schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := infradb.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func makeLoan(t *testing.T, memberID string, principal int64) *loanDomain.Loan {
	t.Helper()
	l, _, err := loanDomain.New(loanDomain.Application{
		LoanID:       id.NewID32(),
		MemberID:     memberID,
		Principal:    principal,
		InterestRate: 12,
		TermMonths:   6,
		Purpose:      "stock",
		Guarantors:   []string{"g-1", "g-2"},
	}, t0)
	if err != nil {
		t.Fatalf("new loan: %v", err)
	}
	return l
}

func makeActiveLoan(t *testing.T, memberID string, principal int64) *loanDomain.Loan {
	t.Helper()
	l := makeLoan(t, memberID, principal)
	if _, err := l.Approve("admin", t0); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := l.Disburse(t0); err != nil {
		t.Fatalf("disburse: %v", err)
	}
	return l
}
