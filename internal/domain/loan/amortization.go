package loan

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MaxInterestRate = 100.0
	monthsPerYear   = 12
)

// MonthlyPayment returns the fixed instalment of a fully amortizing loan,
// rounded half-up to the minor currency unit.
func MonthlyPayment(principal int64, annualRatePercent float64, termMonths int) (int64, error) {
	if err := validateTerms(principal, annualRatePercent, termMonths); err != nil {
		return 0, err
	}

	p := float64(principal)
	r := monthlyRate(annualRatePercent)
	if r == 0 {
		return roundHalfUp(p / float64(termMonths)), nil
	}

	// p*r / (1 - (1+r)^-n) stays finite for long terms and tends to p*r.
	payment := p * r / (1 - math.Pow(1+r, -float64(termMonths)))
	if math.IsNaN(payment) || math.IsInf(payment, 0) {
		return 0, opErr("amortize", "", ErrInvalidArgument, "no finite payment for term %d at rate %v", termMonths, annualRatePercent)
	}
	return roundHalfUp(payment), nil
}

func validateTerms(principal int64, rate float64, term int) error {
	switch {
	case principal <= 0:
		return opErr("amortize", "", ErrInvalidArgument, "principal must be positive, got %d", principal)
	case math.IsNaN(rate) || rate < 0 || rate > MaxInterestRate:
		return opErr("amortize", "", ErrInvalidArgument, "interest rate must be within [0, 100], got %v", rate)
	case term < 1:
		return opErr("amortize", "", ErrInvalidArgument, "term must be at least one month, got %d", term)
	}
	return nil
}

func monthlyRate(annualRatePercent float64) float64 {
	return annualRatePercent / 100 / monthsPerYear
}

func roundHalfUp(v float64) int64 {
	return decimal.NewFromFloat(v).Round(0).IntPart()
}

// Installment is one row of an amortization schedule.
type Installment struct {
	Number    int       `json:"number"`
	DueDate   time.Time `json:"due_date"`
	Payment   int64     `json:"payment"`
	Interest  int64     `json:"interest"`
	Principal int64     `json:"principal"`
	Balance   int64     `json:"balance"`
}

// BuildSchedule splits each instalment into interest and principal. The last
// row absorbs the rounding residue so the balance closes at exactly zero.
func BuildSchedule(principal int64, annualRatePercent float64, termMonths int, start time.Time) ([]Installment, error) {
	payment, err := MonthlyPayment(principal, annualRatePercent, termMonths)
	if err != nil {
		return nil, err
	}

	rate := decimal.NewFromFloat(annualRatePercent).Div(decimal.NewFromInt(100 * monthsPerYear))
	out := make([]Installment, 0, termMonths)
	balance := principal
	for n := 1; n <= termMonths; n++ {
		interest := decimal.NewFromInt(balance).Mul(rate).Round(0).IntPart()
		toPrincipal := payment - interest
		pay := payment
		if n == termMonths || toPrincipal > balance {
			toPrincipal = balance
			pay = balance + interest
		}
		balance -= toPrincipal
		out = append(out, Installment{
			Number:    n,
			DueDate:   AddMonths(start, n),
			Payment:   pay,
			Interest:  interest,
			Principal: toPrincipal,
			Balance:   balance,
		})
		if balance == 0 {
			break
		}
	}
	return out, nil
}
