package pricing_test

import (
	"testing"

	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/pricing"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"integer unchanged", 100, 100},
		{"two decimals unchanged", 99.99, 99.99},
		{"rounds half up", 0.125, 0.13},
		{"rounds down below half", 0.124, 0.12},
		{"negative rounds away from zero", -0.125, -0.13},
		{"float artifact collapses", 0.1 + 0.2, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pricing.Round2(tt.input); got != tt.expected {
				t.Errorf("Round2(%v) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		unitPrice float64
		expected  float64
	}{
		{"single unit", 1, 49.99, 49.99},
		{"multiple units", 3, 19.99, 59.97},
		{"zero price", 5, 0, 0},
		{"rounds product", 7, 19.99, 139.93},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pricing.LineTotal(tt.quantity, tt.unitPrice); got != tt.expected {
				t.Errorf("LineTotal(%d, %v) = %v, expected %v", tt.quantity, tt.unitPrice, got, tt.expected)
			}
		})
	}
}

func TestDiscountAmount(t *testing.T) {
	tests := []struct {
		name               string
		subtotal           float64
		discountPercentage float64
		expected           float64
	}{
		{"no discount", 100, 0, 0},
		{"negative percentage ignored", 100, -10, 0},
		{"ten percent", 200, 10, 20},
		{"fractional result rounds", 99.99, 15, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pricing.DiscountAmount(tt.subtotal, tt.discountPercentage); got != tt.expected {
				t.Errorf("DiscountAmount(%v, %v) = %v, expected %v", tt.subtotal, tt.discountPercentage, got, tt.expected)
			}
		})
	}
}

func TestTaxAppliesAfterDiscount(t *testing.T) {
	// 1000 subtotal, 10% discount leaves 900, 25% tax on 900 is 225
	tax := pricing.TaxAmount(1000, 100, 25)
	if tax != 225 {
		t.Errorf("TaxAmount(1000, 100, 25) = %v, expected 225", tax)
	}

	total := pricing.Total(1000, 100, tax)
	if total != 1125 {
		t.Errorf("Total(1000, 100, %v) = %v, expected 1125", tax, total)
	}
}

func TestTaxAmountZeroPercentage(t *testing.T) {
	if got := pricing.TaxAmount(1000, 100, 0); got != 0 {
		t.Errorf("TaxAmount with zero percentage = %v, expected 0", got)
	}
}

func TestComputeProposalTotals(t *testing.T) {
	proposal := &domain.Proposal{
		DiscountPercentage: 10,
		TaxPercentage:      25,
		Items: []domain.ProposalItem{
			{Description: "License", Quantity: 4, UnitPrice: 100, IsSubscription: true},
			{Description: "Onboarding", Quantity: 1, UnitPrice: 600},
		},
	}

	pricing.ComputeProposalTotals(proposal)

	if proposal.Items[0].Total != 400 {
		t.Errorf("first item total = %v, expected 400", proposal.Items[0].Total)
	}
	if proposal.Items[1].Total != 600 {
		t.Errorf("second item total = %v, expected 600", proposal.Items[1].Total)
	}
	if proposal.Subtotal != 1000 {
		t.Errorf("subtotal = %v, expected 1000", proposal.Subtotal)
	}
	if proposal.DiscountAmount != 100 {
		t.Errorf("discount amount = %v, expected 100", proposal.DiscountAmount)
	}
	if proposal.TaxAmount != 225 {
		t.Errorf("tax amount = %v, expected 225", proposal.TaxAmount)
	}
	if proposal.Total != 1125 {
		t.Errorf("total = %v, expected 1125", proposal.Total)
	}
}

func TestComputeProposalTotalsNoItems(t *testing.T) {
	proposal := &domain.Proposal{DiscountPercentage: 10, TaxPercentage: 25}

	pricing.ComputeProposalTotals(proposal)

	if proposal.Subtotal != 0 || proposal.DiscountAmount != 0 || proposal.TaxAmount != 0 || proposal.Total != 0 {
		t.Errorf("expected all totals to be 0, got subtotal=%v discount=%v tax=%v total=%v",
			proposal.Subtotal, proposal.DiscountAmount, proposal.TaxAmount, proposal.Total)
	}
}

func TestSplitByBillingType(t *testing.T) {
	items := []domain.ProposalItem{
		{Quantity: 12, UnitPrice: 10, IsSubscription: true},
		{Quantity: 1, UnitPrice: 50, IsSubscription: false},
		{Quantity: 2, UnitPrice: 60, IsSubscription: false},
	}

	subscription, oneTime := pricing.SplitByBillingType(items)

	if subscription != 120 {
		t.Errorf("subscription = %v, expected 120", subscription)
	}
	if oneTime != 170 {
		t.Errorf("oneTime = %v, expected 170", oneTime)
	}
}

// Discounts reduce the proposal total but never the billing type split:
// valuation tracks pre-discount line value.
func TestSplitByBillingTypeIgnoresDiscount(t *testing.T) {
	proposal := &domain.Proposal{
		DiscountPercentage: 50,
		Items: []domain.ProposalItem{
			{Quantity: 1, UnitPrice: 100, IsSubscription: true},
		},
	}
	pricing.ComputeProposalTotals(proposal)

	subscription, oneTime := pricing.SplitByBillingType(proposal.Items)

	if proposal.Total != 50 {
		t.Errorf("proposal total = %v, expected 50", proposal.Total)
	}
	if subscription != 100 || oneTime != 0 {
		t.Errorf("split = (%v, %v), expected (100, 0)", subscription, oneTime)
	}
}
