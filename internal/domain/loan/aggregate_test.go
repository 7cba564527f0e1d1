package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil, Filter{})
	assert.Zero(t, s.LoanCount)
	assert.Zero(t, s.TotalOutstanding)
	assert.Zero(t, s.TotalLoaned)
	assert.Zero(t, s.TotalRepaidInRange)
	assert.Len(t, s.CountByStatus, len(Statuses))
	for _, st := range Statuses {
		assert.Equal(t, 0, s.CountByStatus[st])
	}
}

func TestAggregate_Rollup(t *testing.T) {
	jan := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	loans := []Loan{
		{MemberID: "m1", Status: StatusActive, Principal: 1000, TotalRepaid: 300, RemainingBalance: 700,
			Repayments: []Repayment{{Amount: 100, PaidAt: jan}, {Amount: 200, PaidAt: feb}}},
		{MemberID: "m2", Status: StatusActive, Principal: 500, RemainingBalance: 500},
		{MemberID: "m1", Status: StatusCompleted, Principal: 400, TotalRepaid: 400,
			Repayments: []Repayment{{Amount: 400, PaidAt: mar}}},
		{MemberID: "m3", Status: StatusPending, Principal: 900, RemainingBalance: 900},
		{MemberID: "m3", Status: StatusDefaulted, Principal: 900, RemainingBalance: 900},
	}

	all := Aggregate(loans, Filter{})
	assert.Equal(t, 5, all.LoanCount)
	assert.Equal(t, int64(1200), all.TotalOutstanding)
	assert.Equal(t, int64(1900), all.TotalLoaned, "active and completed principal only")
	assert.Equal(t, int64(700), all.TotalRepaidInRange)
	assert.Equal(t, 2, all.CountByStatus[StatusActive])
	assert.Equal(t, 1, all.CountByStatus[StatusDefaulted])
	assert.Equal(t, 0, all.CountByStatus[StatusRejected])

	ranged := Aggregate(loans, Filter{From: feb, To: mar})
	assert.Equal(t, int64(200), ranged.TotalRepaidInRange, "to is exclusive")

	member := Aggregate(loans, Filter{MemberID: "m1"})
	assert.Equal(t, 2, member.LoanCount)
	assert.Equal(t, int64(700), member.TotalOutstanding)
	assert.Equal(t, int64(1400), member.TotalLoaned)

	assert.Equal(t, all, Aggregate(loans, Filter{}), "aggregate is idempotent")
}
