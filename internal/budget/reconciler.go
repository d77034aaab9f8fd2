// Package budget reconciles a project's itemized budget against the amount
// requested and the notice's ceiling.
package budget

import (
	"github.com/shopspring/decimal"

	"github.com/pnab-cultura/engine/internal/models"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

// Tolerance absorbs rounding introduced by currency-string parsing.
var Tolerance = decimal.RequireFromString("0.05")

// Total sums the subtotals of items.
func Total(items []models.BudgetItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Check returns every violation found, in a stable order: malformed items,
// budget mismatch, ceiling exceeded. An empty result means the budget
// reconciles.
func Check(items []models.BudgetItem, requested, ceiling decimal.Decimal) []*appErr.AppError {
	var out []*appErr.AppError
	for i, it := range items {
		if it.UnitValue.IsNegative() || it.Quantity < 0 {
			out = append(out, appErr.New(appErr.CodeInvalid, "budget item values must be non-negative").
				WithMeta("item", i).
				WithMeta("unit_value", it.UnitValue.StringFixed(2)).
				WithMeta("quantity", it.Quantity))
		}
	}

	total := Total(items)
	if diff := total.Sub(requested).Abs(); diff.GreaterThan(Tolerance) {
		out = append(out, appErr.New(appErr.CodeBudgetMismatch, "budget total does not match the requested amount").
			WithMeta("total", total.StringFixed(2)).
			WithMeta("requested", requested.StringFixed(2)).
			WithMeta("difference", diff.StringFixed(2)))
	}

	if requested.GreaterThan(ceiling) {
		out = append(out, appErr.New(appErr.CodeCeilingExceeded, "requested amount exceeds the notice ceiling").
			WithMeta("requested", requested.StringFixed(2)).
			WithMeta("ceiling", ceiling.StringFixed(2)))
	}
	return out
}

// Reconcile returns nil when the budget reconciles, otherwise the first
// violation reported by Check.
func Reconcile(items []models.BudgetItem, requested, ceiling decimal.Decimal) error {
	if errs := Check(items, requested, ceiling); len(errs) > 0 {
		return errs[0]
	}
	return nil
}
