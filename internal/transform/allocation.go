package transform

import (
	"fmt"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
)

// SetAllocation earmarks a lumpsum for a goal. A zero lumpsum removes the allocation.
type SetAllocation struct {
	GoalID  string
	Lumpsum decimal.Decimal
}

func (sa *SetAllocation) Name() string {
	return "set_allocation"
}

func (sa *SetAllocation) Description() string {
	if sa.Lumpsum.IsZero() {
		return fmt.Sprintf("Remove the lumpsum for goal %s", sa.GoalID)
	}
	return fmt.Sprintf("Allocate %s to goal %s", sa.Lumpsum.StringFixed(0), sa.GoalID)
}

func (sa *SetAllocation) Validate(base *domain.Plan) error {
	if _, err := requireGoal(sa.Name(), base, sa.GoalID); err != nil {
		return err
	}
	if sa.Lumpsum.IsNegative() {
		return NewTransformError(sa.Name(), "validate", "lumpsum cannot be negative", nil)
	}
	return nil
}

func (sa *SetAllocation) Apply(base *domain.Plan) (*domain.Plan, error) {
	modified := base.DeepCopy()

	out := make([]domain.Allocation, 0, len(modified.Allocations)+1)
	placed := false
	for _, a := range modified.Allocations {
		if a.GoalID != sa.GoalID {
			out = append(out, a)
			continue
		}
		if !placed && sa.Lumpsum.IsPositive() {
			out = append(out, domain.Allocation{GoalID: sa.GoalID, Lumpsum: sa.Lumpsum})
		}
		placed = true
	}
	if !placed && sa.Lumpsum.IsPositive() {
		out = append(out, domain.Allocation{GoalID: sa.GoalID, Lumpsum: sa.Lumpsum})
	}
	modified.Allocations = out

	return modified, nil
}
