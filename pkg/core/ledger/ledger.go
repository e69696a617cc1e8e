// Package ledger implements the authoritative financial-distribution rules
// of the FlowDistributor dashboard: splitting a sale's revenue across the
// cost-recovery, freight and profit vaults, with a proportional variant for
// partially paid sales, and the derived-capital formula for bank accounts.
//
// All monetary amounts are decimal, never binary floats, so repeated
// cents-level arithmetic stays exact.
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrZeroTotal is returned when a proportional distribution is requested
// for a sale whose total price is zero: the proportion is undefined.
var ErrZeroTotal = errors.New("total sale price is zero, proportion undefined")

// Distribution is the split of a sale's realized value into the three
// distribution vaults. The invariant CostVault + FreightVault + ProfitVault
// == Total holds by construction for a full distribution; for a partial one
// it holds within independent per-component rounding to cents.
type Distribution struct {
	CostVault    decimal.Decimal `json:"cost_vault_amount"`
	FreightVault decimal.Decimal `json:"freight_vault_amount"`
	ProfitVault  decimal.Decimal `json:"profit_vault_amount"`
	Total        decimal.Decimal `json:"total"`
}

// ComputeFullDistribution splits a fully paid sale.
//
//	costVault   = unitCost × quantity
//	freightVault = unitFreight × quantity
//	profitVault = (unitSale − unitCost − unitFreight) × quantity
//
// A zero-margin sale yields an exactly zero profit vault. Selling below
// cost yields a negative profit vault; that is a valid result, never
// clamped here. Surfacing it as a business finding is the evaluator's job.
func ComputeFullDistribution(unitSale, unitCost, unitFreight decimal.Decimal, quantity int64) Distribution {
	qty := decimal.NewFromInt(quantity)

	cost := unitCost.Mul(qty)
	freight := unitFreight.Mul(qty)
	profit := unitSale.Sub(unitCost).Sub(unitFreight).Mul(qty)

	return Distribution{
		CostVault:    cost,
		FreightVault: freight,
		ProfitVault:  profit,
		Total:        cost.Add(freight).Add(profit),
	}
}

// ComputePartialDistribution splits a partially paid sale in proportion to
// the amount collected so far.
//
// The base (100%) components are derived from the unit cost and freight
// prices; the base profit is whatever remains of totalSalePrice after cost
// and freight, matching how the dashboard posts partial collections. Each
// component is scaled by amountPaid/totalSalePrice and rounded to cents
// independently, half away from zero.
func ComputePartialDistribution(unitCost, unitFreight decimal.Decimal, quantity int64, amountPaid, totalSalePrice decimal.Decimal) (Distribution, error) {
	if totalSalePrice.IsZero() {
		return Distribution{}, ErrZeroTotal
	}

	qty := decimal.NewFromInt(quantity)
	baseCost := unitCost.Mul(qty)
	baseFreight := unitFreight.Mul(qty)
	baseProfit := totalSalePrice.Sub(baseCost).Sub(baseFreight)

	proportion := amountPaid.Div(totalSalePrice)

	cost := baseCost.Mul(proportion).Round(2)
	freight := baseFreight.Mul(proportion).Round(2)
	profit := baseProfit.Mul(proportion).Round(2)

	return Distribution{
		CostVault:    cost,
		FreightVault: freight,
		ProfitVault:  profit,
		Total:        cost.Add(freight).Add(profit),
	}, nil
}

// ComputeCapital derives a vault's current capital from its cumulative
// counters. Capital may be negative; that is a reportable state, not an
// error, so there is no floor at zero.
func ComputeCapital(historicalIncome, historicalExpense decimal.Decimal) decimal.Decimal {
	return historicalIncome.Sub(historicalExpense)
}

// ParseAmount coerces the loosely typed values that arrive from JSON
// records into decimal money. Accepted inputs: decimals, Go numerics,
// json.Number-style strings, and formatted amounts with thousands commas
// or a leading currency sign.
func ParseAmount(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("value is missing")
	case decimal.Decimal:
		return val, nil
	case float64:
		return decimal.NewFromFloat(val), nil
	case float32:
		return decimal.NewFromFloat32(val), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	case string:
		cleaned := cleanAmountString(val)
		if cleaned == "" {
			return decimal.Zero, fmt.Errorf("empty amount string")
		}
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Zero, fmt.Errorf("unparseable amount %q", val)
		}
		return d, nil
	case fmt.Stringer:
		return ParseAmount(val.String())
	default:
		return decimal.Zero, fmt.Errorf("unsupported amount type %T", v)
	}
}

func cleanAmountString(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case ',', '$', ' ':
			continue
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
