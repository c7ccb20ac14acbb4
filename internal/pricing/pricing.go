// Package pricing holds the money math for proposals and invoices.
// All amounts are rounded to 2 decimals after each step so stored
// values match what the customer sees on paper.
package pricing

import (
	"math"

	"github.com/salesbridge/crm-api/internal/domain"
)

// Round2 rounds an amount to 2 decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LineTotal computes the total for a single line: quantity * unit price
func LineTotal(quantity int, unitPrice float64) float64 {
	return Round2(float64(quantity) * unitPrice)
}

// Subtotal sums the line totals of all items
func Subtotal(items []domain.ProposalItem) float64 {
	var sum float64
	for _, item := range items {
		sum += LineTotal(item.Quantity, item.UnitPrice)
	}
	return Round2(sum)
}

// DiscountAmount computes the discount applied to the subtotal
func DiscountAmount(subtotal, discountPercentage float64) float64 {
	if discountPercentage <= 0 {
		return 0
	}
	return Round2(subtotal * discountPercentage / 100)
}

// TaxAmount computes tax on the amount remaining after discount,
// never on the raw subtotal.
func TaxAmount(subtotal, discountAmount, taxPercentage float64) float64 {
	if taxPercentage <= 0 {
		return 0
	}
	return Round2((subtotal - discountAmount) * taxPercentage / 100)
}

// Total is subtotal minus discount plus tax
func Total(subtotal, discountAmount, taxAmount float64) float64 {
	return Round2(subtotal - discountAmount + taxAmount)
}

// ComputeProposalTotals recalculates every derived amount on the proposal from its
// items and percentages: each item's Total, then Subtotal, DiscountAmount,
// TaxAmount and Total in that order. The proposal is mutated in place.
func ComputeProposalTotals(p *domain.Proposal) {
	for i := range p.Items {
		p.Items[i].Total = LineTotal(p.Items[i].Quantity, p.Items[i].UnitPrice)
	}
	p.Subtotal = Subtotal(p.Items)
	p.DiscountAmount = DiscountAmount(p.Subtotal, p.DiscountPercentage)
	p.TaxAmount = TaxAmount(p.Subtotal, p.DiscountAmount, p.TaxPercentage)
	p.Total = Total(p.Subtotal, p.DiscountAmount, p.TaxAmount)
}

// SplitByBillingType sums item line totals into subscription and one-time
// buckets. Discounts and tax are intentionally excluded: deal valuation
// tracks pre-discount line value.
func SplitByBillingType(items []domain.ProposalItem) (subscription, oneTime float64) {
	for _, item := range items {
		if item.IsSubscription {
			subscription += LineTotal(item.Quantity, item.UnitPrice)
		} else {
			oneTime += LineTotal(item.Quantity, item.UnitPrice)
		}
	}
	return Round2(subscription), Round2(oneTime)
}
