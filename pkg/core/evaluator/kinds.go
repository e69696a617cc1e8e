package evaluator

import (
	"strings"
)

// OperationKind selects the rule set used to grade a record. Each kind is
// terminal: evaluations are independent calls, there are no transitions.
type OperationKind string

const (
	OpSaleDistribution   OperationKind = "sale_distribution"
	OpPartialPayment     OperationKind = "partial_payment"
	OpCapitalCalculation OperationKind = "capital_calculation"
	OpPaymentStatus      OperationKind = "payment_status"
)

// kindAliases maps the operation-type spellings used by historical dataset
// producers onto the canonical kinds.
var kindAliases = map[string]OperationKind{
	"sale_distribution":   OpSaleDistribution,
	"venta":               OpSaleDistribution,
	"distribucion_venta":  OpSaleDistribution,
	"partial_payment":     OpPartialPayment,
	"pago_parcial":        OpPartialPayment,
	"capital_calculation": OpCapitalCalculation,
	"calculo_capital":     OpCapitalCalculation,
	"payment_status":      OpPaymentStatus,
	"estado_pago":         OpPaymentStatus,
}

// ParseOperationKind resolves an operation-type string, accepting the
// historical aliases. The second result reports whether the kind is known.
func ParseOperationKind(s string) (OperationKind, bool) {
	kind, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]
	return kind, ok
}
