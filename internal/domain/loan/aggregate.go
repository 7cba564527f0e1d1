package loan

import "time"

// Filter narrows an aggregation. Zero values mean "no bound".
type Filter struct {
	MemberID string
	From     time.Time
	To       time.Time
}

// Summary is the reporting rollup over a set of loans.
type Summary struct {
	LoanCount          int            `json:"loan_count"`
	TotalOutstanding   int64          `json:"total_outstanding"`
	TotalLoaned        int64          `json:"total_loaned"`
	CountByStatus      map[Status]int `json:"count_by_status"`
	TotalRepaidInRange int64          `json:"total_repaid_in_range"`
}

// Aggregate folds loans into a Summary. It never fails; an empty input yields
// zeroes with every status present.
func Aggregate(loans []Loan, f Filter) Summary {
	s := Summary{CountByStatus: make(map[Status]int, len(Statuses))}
	for _, st := range Statuses {
		s.CountByStatus[st] = 0
	}
	for i := range loans {
		l := &loans[i]
		if f.MemberID != "" && l.MemberID != f.MemberID {
			continue
		}
		s.LoanCount++
		s.CountByStatus[l.Status]++
		switch l.Status {
		case StatusActive:
			s.TotalOutstanding += l.RemainingBalance
			s.TotalLoaned += l.Principal
		case StatusCompleted:
			s.TotalLoaned += l.Principal
		}
		for _, r := range l.Repayments {
			if f.inRange(r.PaidAt) {
				s.TotalRepaidInRange += r.Amount
			}
		}
	}
	return s
}

func (f Filter) inRange(t time.Time) bool {
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !t.Before(f.To) {
		return false
	}
	return true
}
