package creditrequest

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"credapp/internal/domain/client"
)

var ErrNotFound = errors.New("credit request not found")

const (
	MinLoanAmount   = 5000
	LoanAmountRange = 15000
	MinMonths       = 6
	MonthsRange     = 18

	// Pending lists at most this many requests; the total is reported apart.
	VisiblePending = 5
)

var (
	minMonthlyRate   = decimal.RequireFromString("0.015")
	monthlyRateRange = decimal.RequireFromString("0.035")
)

// Request is an incoming credit request: a client snapshot plus the loan terms
// the client asked for.
type Request struct {
	ClientID     int64           `json:"id_cliente"`
	Name         string          `json:"nome"`
	NationalID   string          `json:"cpf"`
	Occupation   string          `json:"profissao"`
	Age          int             `json:"idade"`
	AnnualSalary float64         `json:"salario_anual"`
	LoanAmount   decimal.Decimal `json:"valor_emprestimo"`
	Months       int             `json:"meses_restantes"`
	MonthlyRate  decimal.Decimal `json:"juros_mensal"`
	Installment  decimal.Decimal `json:"valor_parcela"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Notification announces a new request; its id is the client id.
type Notification struct {
	ID int64 `json:"id"`
	Request
}

// Rand is the randomness the term generator needs; *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// NewRequest builds a request for c with random terms: an amount in
// [5000, 20000), 6 to 23 months and a monthly rate in [1.5%, 5%] with four
// decimals.
func NewRequest(c client.Client, r Rand, now time.Time) Request {
	amount := decimal.NewFromInt(int64(MinLoanAmount + r.IntN(LoanAmountRange)))
	months := MinMonths + r.IntN(MonthsRange)
	rate := minMonthlyRate.Add(monthlyRateRange.Mul(decimal.NewFromFloat(r.Float64()))).Round(4)

	return Request{
		ClientID:     c.ID,
		Name:         c.Name,
		NationalID:   c.NationalID,
		Occupation:   c.Occupation,
		Age:          c.Age,
		AnnualSalary: c.AnnualSalary,
		LoanAmount:   amount,
		Months:       months,
		MonthlyRate:  rate,
		Installment:  Installment(amount, rate, months),
		CreatedAt:    now.UTC(),
	}
}

// Installment is the fixed (price table) payment for amount at a monthly rate
// over n months, rounded to cents.
func Installment(amount, rate decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	months := decimal.NewFromInt(int64(n))
	if !rate.IsPositive() {
		return amount.DivRound(months, 2)
	}
	growth := decimal.NewFromInt(1).Add(rate).Pow(months)
	return amount.Mul(rate).Mul(growth).DivRound(growth.Sub(decimal.NewFromInt(1)), 16).Round(2)
}
