package credit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidFields = errors.New("invalid numeric fields")

// Profile is the applicant data a decision is made on.
type Profile struct {
	FullName         string          `json:"full_name"`
	NationalID       string          `json:"national_id"`
	Age              int             `json:"age"`
	EmploymentMonths int             `json:"employment_months"`
	MonthlyIncome    decimal.Decimal `json:"monthly_income"`
	CreditScore      int             `json:"credit_score"`
	DebtAmount       decimal.Decimal `json:"debt_amount"`
}

// Form carries the simulator fields exactly as typed.
type Form struct {
	FullName         string `json:"nome"`
	NationalID       string `json:"cpf"`
	Age              string `json:"idade"`
	EmploymentMonths string `json:"tempo_emprego"`
	MonthlyIncome    string `json:"renda"`
	CreditScore      string `json:"score"`
	DebtAmount       string `json:"dividas"`
}

// Profile parses the numeric fields of the form. Every failing field is
// reported in the joined error.
func (f Form) Profile() (Profile, error) {
	p := Profile{FullName: f.FullName, NationalID: f.NationalID}
	var errs []error

	var err error
	if p.Age, err = ParseCount(f.Age); err != nil {
		errs = append(errs, fmt.Errorf("age: %w", err))
	}
	if p.EmploymentMonths, err = ParseCount(f.EmploymentMonths); err != nil {
		errs = append(errs, fmt.Errorf("employment months: %w", err))
	}
	if p.MonthlyIncome, err = ParseAmount(f.MonthlyIncome); err != nil {
		errs = append(errs, fmt.Errorf("monthly income: %w", err))
	}
	if p.CreditScore, err = ParseCount(f.CreditScore); err != nil {
		errs = append(errs, fmt.Errorf("credit score: %w", err))
	}
	if p.DebtAmount, err = ParseAmount(f.DebtAmount); err != nil {
		errs = append(errs, fmt.Errorf("debt amount: %w", err))
	}
	if len(errs) > 0 {
		return Profile{}, fmt.Errorf("%w: %w", ErrInvalidFields, errors.Join(errs...))
	}
	return p, nil
}

// NormalizeNationalID keeps only the digits of a CPF, so "123.456.789-00"
// and "12345678900" compare equal.
func NormalizeNationalID(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
