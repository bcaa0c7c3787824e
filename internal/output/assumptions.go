package output

import (
	"fmt"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/inr"
)

// Assumptions lists the modelling assumptions behind a plan's numbers
func Assumptions(plan *domain.Plan) []string {
	p := plan.Profile
	assumptions := []string{
		fmt.Sprintf("Equity returns: %s annually", inr.Percent(p.Assumptions.EquityAnnual, 1)),
		fmt.Sprintf("Debt returns: %s annually", inr.Percent(p.Assumptions.DebtAnnual, 1)),
		fmt.Sprintf("Contributions step up %s every year", inr.Percent(p.StepUp.AnnualRate, 1)),
		"Returns compound monthly; contributions land at the end of each month",
		"Goal costs grow with each goal's own inflation rate",
	}
	if unallocated := p.Savings.Sub(plan.TotalAllocated()); unallocated.IsPositive() {
		assumptions = append(assumptions, fmt.Sprintf("Unallocated savings of %s are not invested towards any goal", inr.Format(unallocated)))
	}
	return assumptions
}
