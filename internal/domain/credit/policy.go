package credit

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPolicy = errors.New("invalid credit policy")
	ErrUnknownPolicy = errors.New("unknown credit policy")
)

// Policy holds the tunable constants of the limit computation.
type Policy struct {
	Name                string          `json:"name"`
	MinIncome           decimal.Decimal `json:"min_income"`
	BaseMultiplier      decimal.Decimal `json:"base_multiplier"`
	DebtPenaltyFactor   decimal.Decimal `json:"debt_penalty_factor"`
	TenureBonusFactor   decimal.Decimal `json:"tenure_bonus_factor"`
	ScoreTierAdjustment bool            `json:"score_tier_adjustment"`
}

const (
	PolicyInstitution = "institution"
	PolicyConsumer    = "consumer"
)

// InstitutionPolicy is the default policy used by the back-office simulator.
var InstitutionPolicy = Policy{
	Name:              PolicyInstitution,
	MinIncome:         decimal.NewFromInt(500),
	BaseMultiplier:    decimal.NewFromInt(5),
	DebtPenaltyFactor: decimal.RequireFromString("0.5"),
	TenureBonusFactor: decimal.RequireFromString("1.2"),
}

// ConsumerPolicy is the stricter policy of the public simulator: higher income
// floor, larger multiplier, and score-tier adjustment enabled.
var ConsumerPolicy = Policy{
	Name:                PolicyConsumer,
	MinIncome:           decimal.NewFromInt(1000),
	BaseMultiplier:      decimal.NewFromInt(6),
	DebtPenaltyFactor:   decimal.RequireFromString("0.6"),
	TenureBonusFactor:   decimal.RequireFromString("1.3"),
	ScoreTierAdjustment: true,
}

var presets = map[string]Policy{
	PolicyInstitution: InstitutionPolicy,
	PolicyConsumer:    ConsumerPolicy,
}

// LookupPolicy resolves a preset by name.
func LookupPolicy(name string) (Policy, error) {
	p, ok := presets[name]
	if !ok {
		return Policy{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
	return p, nil
}

// Policies returns every preset, ordered by name.
func Policies() []Policy {
	out := make([]Policy, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (p Policy) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidPolicy)
	case !p.MinIncome.IsPositive():
		return fmt.Errorf("%w: min income must be positive, got %s", ErrInvalidPolicy, p.MinIncome)
	case !p.BaseMultiplier.IsPositive():
		return fmt.Errorf("%w: base multiplier must be positive, got %s", ErrInvalidPolicy, p.BaseMultiplier)
	case !p.DebtPenaltyFactor.IsPositive() || p.DebtPenaltyFactor.GreaterThan(decimal.NewFromInt(1)):
		return fmt.Errorf("%w: debt penalty factor must be in (0, 1], got %s", ErrInvalidPolicy, p.DebtPenaltyFactor)
	case p.TenureBonusFactor.LessThan(decimal.NewFromInt(1)):
		return fmt.Errorf("%w: tenure bonus factor must be >= 1, got %s", ErrInvalidPolicy, p.TenureBonusFactor)
	}
	return nil
}
