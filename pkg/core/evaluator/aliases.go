package evaluator

import (
	"github.com/shopspring/decimal"

	"chronos_evaluation/pkg/core/ledger"
)

// Canonical field names. The calculation layer only ever sees these; the
// many producer-specific spellings are resolved once, at the boundary.
const (
	fieldUnitSalePrice     = "unit_sale_price"
	fieldUnitCostPrice     = "unit_cost_price"
	fieldUnitFreightPrice  = "unit_freight_price"
	fieldQuantity          = "quantity"
	fieldTotalSalePrice    = "total_sale_price"
	fieldAmountPaid        = "amount_paid"
	fieldCostVault         = "cost_vault"
	fieldFreightVault      = "freight_vault"
	fieldProfitVault       = "profit_vault"
	fieldHistoricalIncome  = "historical_income"
	fieldHistoricalExpense = "historical_expense"
	fieldPrevIncome        = "previous_historical_income"
	fieldPrevExpense       = "previous_historical_expense"
	fieldCurrentCapital    = "current_capital"
	fieldPaymentStatus     = "payment_status"
	fieldAffectsCapital    = "affects_capital"
)

// distributionContainers are keys under which producers nest the vault
// amounts instead of emitting them at the top level.
var distributionContainers = []string{"distribucion", "distribution"}

// defaultAliases is the historical alias table, collected from every
// producer the dashboard has had to grade. Order matters: earlier names win.
func defaultAliases() map[string][]string {
	return map[string][]string{
		fieldUnitSalePrice:     {"unit_sale_price", "unitSalePrice", "precioVentaUnidad", "precioVenta"},
		fieldUnitCostPrice:     {"unit_cost_price", "unitCostPrice", "precioCompraUnidad", "precioCompra"},
		fieldUnitFreightPrice:  {"unit_freight_price", "unitFreightPrice", "precioFlete", "freightPrice"},
		fieldQuantity:          {"quantity", "cantidad"},
		fieldTotalSalePrice:    {"total_sale_price", "totalSalePrice", "montoTotal", "precioTotalVenta"},
		fieldAmountPaid:        {"amount_paid", "amountPaid", "montoPagado"},
		fieldCostVault:         {"cost_vault_amount", "costVaultAmount", "boveda_monte", "montoBovedaMonte"},
		fieldFreightVault:      {"freight_vault_amount", "freightVaultAmount", "flete_sur", "fletes", "montoFletes"},
		fieldProfitVault:       {"profit_vault_amount", "profitVaultAmount", "utilidades", "montoUtilidades"},
		fieldHistoricalIncome:  {"historical_income", "historicalIncome", "historicoIngresos"},
		fieldHistoricalExpense: {"historical_expense", "historicalExpense", "historicoGastos"},
		fieldPrevIncome:        {"previous_historical_income", "previousHistoricalIncome", "previousHistoricoIngresos"},
		fieldPrevExpense:       {"previous_historical_expense", "previousHistoricalExpense", "previousHistoricoGastos"},
		fieldCurrentCapital:    {"current_capital", "currentCapital", "capitalActual"},
		fieldPaymentStatus:     {"payment_status", "paymentStatus", "estadoPago"},
		fieldAffectsCapital:    {"affects_capital", "affectsCapital", "afectaCapital"},
	}
}

// fieldResolver maps canonical field names to the producer spellings.
type fieldResolver struct {
	aliases map[string][]string
}

func newFieldResolver() *fieldResolver {
	return &fieldResolver{aliases: defaultAliases()}
}

// addAliases registers extra spellings for a canonical field. The canonical
// name itself is always consulted first.
func (r *fieldResolver) addAliases(canonical string, names ...string) {
	r.aliases[canonical] = append(r.aliases[canonical], names...)
}

// lookup finds the first alias of canonical present in m.
func (r *fieldResolver) lookup(m map[string]any, canonical string) (any, bool) {
	if m == nil {
		return nil, false
	}
	names, ok := r.aliases[canonical]
	if !ok {
		names = []string{canonical}
	}
	for _, name := range names {
		if v, present := m[name]; present {
			return v, true
		}
	}
	return nil, false
}

// amount resolves canonical in m and parses it as decimal money, falling
// back to fallback when the field is absent. A present-but-unparseable
// value is an input error for the caller to score, not a panic.
func (r *fieldResolver) amount(m map[string]any, canonical string, fallback decimal.Decimal) (decimal.Decimal, error) {
	v, ok := r.lookup(m, canonical)
	if !ok {
		return fallback, nil
	}
	return ledger.ParseAmount(v)
}

// distributionMap returns the map holding the vault amounts: a nested
// container when the producer used one, otherwise the output itself.
func (r *fieldResolver) distributionMap(output map[string]any) map[string]any {
	for _, key := range distributionContainers {
		if nested, ok := output[key].(map[string]any); ok {
			return nested
		}
	}
	return output
}
