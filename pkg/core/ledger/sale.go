package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the collection state of a sale.
type PaymentStatus string

const (
	PaymentComplete PaymentStatus = "completo"
	PaymentPartial  PaymentStatus = "parcial"
	PaymentPending  PaymentStatus = "pendiente"
)

// ClassifyPayment derives the status from the collected amount:
// paid == total is Complete (the degenerate 0 == 0 case included),
// 0 < paid < total is Partial, paid == 0 is Pending.
func ClassifyPayment(amountPaid, totalSalePrice decimal.Decimal) PaymentStatus {
	switch {
	case amountPaid.Equal(totalSalePrice):
		return PaymentComplete
	case amountPaid.IsPositive():
		return PaymentPartial
	default:
		return PaymentPending
	}
}

// NormalizeStatus maps the status spellings seen across producers
// (Spanish and English, any case) onto the canonical identifiers.
// Unknown spellings pass through lowercased so mismatches stay visible.
func NormalizeStatus(s string) PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "completo", "complete", "completed", "paid":
		return PaymentComplete
	case "parcial", "partial":
		return PaymentPartial
	case "pendiente", "pending":
		return PaymentPending
	default:
		return PaymentStatus(strings.ToLower(strings.TrimSpace(s)))
	}
}

// AffectsCapital reports whether a sale in this status posts any amount to
// the vaults. Pending sales exist only as receivables.
func (s PaymentStatus) AffectsCapital() bool {
	return s == PaymentComplete || s == PaymentPartial
}

// SaleRecord is one sale transaction in canonical form.
type SaleRecord struct {
	UnitSalePrice    decimal.Decimal `json:"unit_sale_price"`
	UnitCostPrice    decimal.Decimal `json:"unit_cost_price"`
	UnitFreightPrice decimal.Decimal `json:"unit_freight_price"`
	Quantity         int64           `json:"quantity"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
}

// TotalSalePrice is always derived: unitSalePrice × quantity.
func (r SaleRecord) TotalSalePrice() decimal.Decimal {
	return r.UnitSalePrice.Mul(decimal.NewFromInt(r.Quantity))
}

// Distribute computes the vault posting for the record according to its
// payment status. Pending sales post nothing: the zero Distribution it
// returns reflects that no ledger amounts are realized.
func (r SaleRecord) Distribute() (Distribution, error) {
	switch r.PaymentStatus {
	case PaymentPartial:
		return ComputePartialDistribution(
			r.UnitCostPrice, r.UnitFreightPrice, r.Quantity,
			r.AmountPaid, r.TotalSalePrice(),
		)
	case PaymentPending:
		return Distribution{
			CostVault:    decimal.Zero,
			FreightVault: decimal.Zero,
			ProfitVault:  decimal.Zero,
			Total:        decimal.Zero,
		}, nil
	default:
		return ComputeFullDistribution(
			r.UnitSalePrice, r.UnitCostPrice, r.UnitFreightPrice, r.Quantity,
		), nil
	}
}
