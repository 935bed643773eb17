package market

import "math"

// PricingPolicy is the pure cost math consulted by the market handlers.
// Rates come from tuning; nothing in here touches the ledger.
type PricingPolicy struct {
	// SalesCutRate is the fraction of the sale price the trader keeps.
	SalesCutRate float64
	// DeliveryCostMul scales the delivery cost curve.
	DeliveryCostMul float64
	// DurationWeeksMul relates requested listing weeks to deposits charged.
	DurationWeeksMul float64
}

// DepositCost is the per-duration-unit deposit for listing a stack.
// Extension point; every stack costs 1 gear for now.
func (p PricingPolicy) DepositCost(st *ItemStack) int {
	return 1
}

// DeliveryCost grows sub-linearly with distance so that far deliveries stay
// affordable while remaining monotonically non-decreasing. Anything closer
// than 200 blocks is free.
func (p PricingPolicy) DeliveryCost(distance float64) int {
	if distance < 200 {
		return 0
	}
	return int(math.Ceil(3.5 * math.Log((distance-200)/10000+1) * p.DeliveryCostMul))
}

// DurationDeposits converts the requested listing duration into the number
// of deposits charged, minimum 1.
func (p PricingPolicy) DurationDeposits(weeks int) int {
	mul := p.DurationWeeksMul
	if mul <= 0 {
		mul = 1
	}
	n := int(float64(weeks) / mul)
	if n < 1 {
		n = 1
	}
	return n
}
