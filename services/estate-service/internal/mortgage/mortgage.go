// Package mortgage computes fixed-rate amortised loan repayments.
package mortgage

import (
	"errors"
	"math"
)

// MaxTermYears is the longest loan Calculate accepts.
const MaxTermYears = 100

var ErrInvalidInput = errors.New("invalid mortgage input")

// Input describes a loan. DownPaymentPct and AnnualRatePct are percentages.
type Input struct {
	HomePrice      float64
	DownPaymentPct float64
	AnnualRatePct  float64
	TermYears      int
}

type Result struct {
	Principal      float64 `json:"principal"`
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalPayment   float64 `json:"totalPayment"`
	TotalInterest  float64 `json:"totalInterest"`
}

// Calculate returns the monthly repayment for in using the standard
// amortisation formula. A rate too small to change the compounding factor
// repays the principal in equal parts. Amounts are rounded to cents.
func Calculate(in Input) (Result, error) {
	if in.HomePrice <= 0 || in.TermYears <= 0 || in.TermYears > MaxTermYears ||
		in.DownPaymentPct < 0 || in.DownPaymentPct > 100 || in.AnnualRatePct < 0 ||
		math.IsNaN(in.HomePrice) || math.IsInf(in.HomePrice, 0) ||
		math.IsNaN(in.DownPaymentPct) || math.IsNaN(in.AnnualRatePct) || math.IsInf(in.AnnualRatePct, 0) {
		return Result{}, ErrInvalidInput
	}

	principal := in.HomePrice * (1 - in.DownPaymentPct/100)
	n := float64(in.TermYears) * 12
	r := in.AnnualRatePct / 100 / 12

	monthly := principal / n
	if f := math.Pow(1+r, n); f != 1 {
		monthly = principal * r * f / (f - 1)
	}

	total := monthly * n
	if !finite(monthly) || !finite(total) {
		return Result{}, ErrInvalidInput
	}

	return Result{
		Principal:      round(principal),
		MonthlyPayment: round(monthly),
		TotalPayment:   round(total),
		TotalInterest:  round(total - principal),
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
