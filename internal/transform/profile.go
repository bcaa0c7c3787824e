package transform

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/capplan/internal/config"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	decOne     = decimal.NewFromInt(1)
	decHundred = decimal.NewFromInt(100)
)

// SetProfile updates the saver's profile. Nil fields are left alone.
// Changing age or savings re-derives the step-up rate unless KeepStepUp is set.
type SetProfile struct {
	SaverName  *string
	Age        *int
	Savings    *decimal.Decimal
	KeepStepUp bool
}

func (sp *SetProfile) Name() string {
	return "set_profile"
}

func (sp *SetProfile) Description() string {
	var parts []string
	if sp.SaverName != nil {
		parts = append(parts, fmt.Sprintf("name %q", *sp.SaverName))
	}
	if sp.Age != nil {
		parts = append(parts, fmt.Sprintf("age %d", *sp.Age))
	}
	if sp.Savings != nil {
		parts = append(parts, "savings "+sp.Savings.StringFixed(0))
	}
	if len(parts) == 0 {
		return "Leave profile unchanged"
	}
	return "Set profile " + strings.Join(parts, ", ")
}

func (sp *SetProfile) Validate(base *domain.Plan) error {
	if err := requireBase(sp.Name(), base); err != nil {
		return err
	}
	if sp.SaverName != nil && strings.TrimSpace(*sp.SaverName) == "" {
		return NewTransformError(sp.Name(), "validate", "name cannot be empty", nil)
	}
	if sp.Age != nil && (*sp.Age < 18 || *sp.Age > 100) {
		return NewTransformError(sp.Name(), "validate", fmt.Sprintf("age must be between 18 and 100, got %d", *sp.Age), nil)
	}
	if sp.Savings != nil && sp.Savings.IsNegative() {
		return NewTransformError(sp.Name(), "validate", "savings cannot be negative", nil)
	}
	return nil
}

func (sp *SetProfile) Apply(base *domain.Plan) (*domain.Plan, error) {
	modified := base.DeepCopy()
	p := &modified.Profile

	if sp.SaverName != nil {
		p.Name = *sp.SaverName
	}
	if sp.Age != nil {
		p.Age = *sp.Age
	}
	if sp.Savings != nil {
		p.Savings = *sp.Savings
	}
	if !sp.KeepStepUp && (sp.Age != nil || sp.Savings != nil) {
		p.StepUp.AnnualRate = config.SuggestStepUpRate(p.Age, p.Savings)
	}

	return modified, nil
}

// SetStepUp fixes the yearly contribution increase
type SetStepUp struct {
	Rate decimal.Decimal // e.g. 0.05 for 5%
}

func (ss *SetStepUp) Name() string {
	return "set_step_up"
}

func (ss *SetStepUp) Description() string {
	return fmt.Sprintf("Set contribution step-up to %s%%", ss.Rate.Mul(decHundred).StringFixed(1))
}

func (ss *SetStepUp) Validate(base *domain.Plan) error {
	if err := requireBase(ss.Name(), base); err != nil {
		return err
	}
	if ss.Rate.IsNegative() || ss.Rate.GreaterThan(decOne) {
		return NewTransformError(ss.Name(), "validate", fmt.Sprintf("rate must be between 0 and 1, got %s", ss.Rate), nil)
	}
	return nil
}

func (ss *SetStepUp) Apply(base *domain.Plan) (*domain.Plan, error) {
	modified := base.DeepCopy()
	modified.Profile.StepUp.AnnualRate = ss.Rate
	return modified, nil
}

// SetAssumptions changes the expected annual returns. Nil fields are left alone.
type SetAssumptions struct {
	EquityAnnual *decimal.Decimal
	DebtAnnual   *decimal.Decimal
}

func (sa *SetAssumptions) Name() string {
	return "set_assumptions"
}

func (sa *SetAssumptions) Description() string {
	var parts []string
	if sa.EquityAnnual != nil {
		parts = append(parts, fmt.Sprintf("equity %s%%", sa.EquityAnnual.Mul(decHundred).StringFixed(1)))
	}
	if sa.DebtAnnual != nil {
		parts = append(parts, fmt.Sprintf("debt %s%%", sa.DebtAnnual.Mul(decHundred).StringFixed(1)))
	}
	if len(parts) == 0 {
		return "Leave return assumptions unchanged"
	}
	return "Assume " + strings.Join(parts, " and ") + " annual returns"
}

func (sa *SetAssumptions) Validate(base *domain.Plan) error {
	if err := requireBase(sa.Name(), base); err != nil {
		return err
	}
	for label, v := range map[string]*decimal.Decimal{"equity": sa.EquityAnnual, "debt": sa.DebtAnnual} {
		if v != nil && (v.IsNegative() || v.GreaterThan(decOne)) {
			return NewTransformError(sa.Name(), "validate", fmt.Sprintf("%s return must be between 0 and 1, got %s", label, v), nil)
		}
	}
	return nil
}

func (sa *SetAssumptions) Apply(base *domain.Plan) (*domain.Plan, error) {
	modified := base.DeepCopy()
	if sa.EquityAnnual != nil {
		modified.Profile.Assumptions.EquityAnnual = *sa.EquityAnnual
	}
	if sa.DebtAnnual != nil {
		modified.Profile.Assumptions.DebtAnnual = *sa.DebtAnnual
	}
	return modified, nil
}
