// Package credit holds the credit-limit decision engine: a pure function from
// applicant data to an approval (limit, installments) or a typed rejection.
package credit

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MinAge           = 18
	MaxAge           = 75
	MinCreditScore   = 300
	MaxCreditScore   = 850
	NationalIDLength = 11

	ShortTenureMonths = 12
	LongTenureMonths  = 60

	LowScoreCutoff  = 500
	HighScoreCutoff = 750

	// fractional digits kept for score / MaxCreditScore
	scoreRatioPrecision = 16
)

var (
	debtThresholdRatio = decimal.RequireFromString("0.5")
	shortTenureFactor  = decimal.RequireFromString("0.7")
	lowScoreFactor     = decimal.RequireFromString("0.5")
	highScoreFactor    = decimal.RequireFromString("1.5")
	installmentRatio   = decimal.RequireFromString("0.3")
	maxScore           = decimal.NewFromInt(MaxCreditScore)
)

// Engine evaluates profiles against a validated Policy. It keeps no state
// beyond the policy and is safe for concurrent use.
type Engine struct {
	policy Policy
}

func NewEngine(p Policy) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Engine{policy: p}, nil
}

// MustEngine is NewEngine for package-level presets; it panics on a bad policy.
func MustEngine(p Policy) *Engine {
	e, err := NewEngine(p)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Engine) Policy() Policy { return e.policy }

// EvaluateForm runs the name and national id checks on the raw form, parses
// the numeric fields (any failure rejects with INVALID_FIELDS) and evaluates
// the resulting profile.
func (e *Engine) EvaluateForm(f Form) Decision {
	if strings.TrimSpace(f.FullName) == "" {
		return Rejected(ReasonMissingName)
	}
	if len(NormalizeNationalID(f.NationalID)) != NationalIDLength {
		return Rejected(ReasonInvalidID)
	}
	p, err := f.Profile()
	if err != nil {
		return Rejected(ReasonInvalidFields)
	}
	return e.Evaluate(p)
}

// Evaluate validates p in a fixed order, stopping at the first failure, and
// computes the approved limit when every check passes.
func (e *Engine) Evaluate(p Profile) Decision {
	if reason, ok := e.validate(p); !ok {
		return Rejected(reason)
	}
	return e.compute(p)
}

func (e *Engine) validate(p Profile) (RejectionReason, bool) {
	switch {
	case strings.TrimSpace(p.FullName) == "":
		return ReasonMissingName, false
	case len(NormalizeNationalID(p.NationalID)) != NationalIDLength:
		return ReasonInvalidID, false
	case p.DebtAmount.IsNegative():
		return ReasonInvalidFields, false
	case p.Age < MinAge || p.Age > MaxAge:
		return ReasonAgeOutOfRange, false
	case p.EmploymentMonths < 0:
		return ReasonInvalidEmployment, false
	case p.MonthlyIncome.LessThan(e.policy.MinIncome):
		return ReasonInsufficientIncome, false
	case p.CreditScore < MinCreditScore:
		return ReasonScoreTooLow, false
	}
	return "", true
}

func (e *Engine) compute(p Profile) Decision {
	income := p.MonthlyIncome
	ratio := decimal.NewFromInt(int64(p.CreditScore)).DivRound(maxScore, scoreRatioPrecision)
	base := income.Mul(ratio).Mul(e.policy.BaseMultiplier)

	var advisories []Advisory
	if p.DebtAmount.GreaterThan(income.Mul(debtThresholdRatio)) {
		base = base.Mul(e.policy.DebtPenaltyFactor)
		advisories = append(advisories, AdvisoryHighDebt)
	}

	switch {
	case p.EmploymentMonths < ShortTenureMonths:
		base = base.Mul(shortTenureFactor)
	case p.EmploymentMonths >= LongTenureMonths:
		base = base.Mul(e.policy.TenureBonusFactor)
	}

	if e.policy.ScoreTierAdjustment {
		switch {
		case p.CreditScore < LowScoreCutoff:
			base = base.Mul(lowScoreFactor)
		case p.CreditScore > HighScoreCutoff:
			base = base.Mul(highScoreFactor)
		}
	}

	// Round is half away from zero.
	limit := base.Round(0)
	if limit.IsNegative() {
		limit = decimal.Zero
	}
	return Approved(limit, maxInstallments(limit, income), advisories...)
}

// maxInstallments is floor(limit / round(income * 0.3)), at least 1.
func maxInstallments(limit, income decimal.Decimal) int {
	installmentCap := income.Mul(installmentRatio).Round(0)
	if !installmentCap.IsPositive() {
		return 1
	}
	q, _ := limit.QuoRem(installmentCap, 0)
	n := int(q.IntPart())
	if n < 1 {
		return 1
	}
	return n
}
