// Package evaluator grades produced business-logic outputs against the
// authoritative distribution rules in pkg/core/ledger. It is a stateless
// dispatcher: every call derives its own ground truth, compares field by
// field, and returns a fresh report. Data-quality problems become scores
// and error strings, never panics, so one bad record cannot abort a batch.
package evaluator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"chronos_evaluation/pkg/core/compare"
	"chronos_evaluation/pkg/core/ledger"
	"chronos_evaluation/pkg/models"
)

// Component weights for the full-sale distribution. Profit carries the
// highest weight: it is the figure most sensitive to getting the business
// rule wrong.
const (
	weightFullCost    = 0.35
	weightFullFreight = 0.25
	weightFullProfit  = 0.40

	weightPartialCost       = 0.30
	weightPartialFreight    = 0.20
	weightPartialProfit     = 0.30
	weightPartialProportion = 0.20

	monotonicPenalty = 0.5
)

// proportionSlack is the absolute cents slack allowed when checking that
// partial-payment components sum back to the amount paid. Each component is
// rounded independently, so the sum can be off by a cent.
var proportionSlack = decimal.NewFromFloat(0.01)

// Evaluator grades one operation per call. The zero configuration matches
// the historical grading behavior; tolerance, bands and field aliases can
// be adjusted per run.
type Evaluator struct {
	tolerance float64
	bands     compare.Bands
	fields    *fieldResolver
}

// New returns an Evaluator with the default 1% tolerance and bands.
func New() *Evaluator {
	return &Evaluator{
		tolerance: compare.DefaultTolerance,
		bands:     compare.DefaultBands,
		fields:    newFieldResolver(),
	}
}

// SetTolerance overrides the relative tolerance used for every monetary
// comparison.
func (e *Evaluator) SetTolerance(tolerance float64) {
	e.tolerance = tolerance
}

// SetBands overrides the partial-credit band ladder.
func (e *Evaluator) SetBands(bands compare.Bands) {
	e.bands = bands
}

// AddFieldAliases registers extra producer spellings for a canonical field.
func (e *Evaluator) AddFieldAliases(canonical string, names ...string) {
	e.fields.addAliases(canonical, names...)
}

// Evaluate dispatches on the operation type and returns a well-formed
// report in every case. An unknown operation type yields a zero-accuracy
// report with a single descriptive error; no partial evaluation would be
// meaningful there.
func (e *Evaluator) Evaluate(operationType string, input, output, expected map[string]any) *models.EvaluationReport {
	kind, ok := ParseOperationKind(operationType)
	if !ok {
		report := models.NewEvaluationReport(operationType)
		report.AddError(fmt.Sprintf("unknown operation type: %q", operationType))
		return report
	}

	switch kind {
	case OpSaleDistribution:
		return e.evaluateSaleDistribution(input, output, expected)
	case OpPartialPayment:
		return e.evaluatePartialPayment(input, output, expected)
	case OpCapitalCalculation:
		return e.evaluateCapital(input, output)
	default:
		return e.evaluatePaymentStatus(input, output)
	}
}

// evaluateSaleDistribution grades the three-vault split of a fully paid
// sale against the authoritative formulas.
func (e *Evaluator) evaluateSaleDistribution(input, output, expected map[string]any) *models.EvaluationReport {
	report := models.NewEvaluationReport(string(OpSaleDistribution))

	unitSale, err := e.fields.amount(input, fieldUnitSalePrice, decimal.Zero)
	if err != nil {
		report.AddError(fmt.Sprintf("cannot derive ground truth, %s: %v", fieldUnitSalePrice, err))
		return report
	}
	unitCost, err := e.fields.amount(input, fieldUnitCostPrice, decimal.Zero)
	if err != nil {
		report.AddError(fmt.Sprintf("cannot derive ground truth, %s: %v", fieldUnitCostPrice, err))
		return report
	}
	unitFreight, err := e.fields.amount(input, fieldUnitFreightPrice, decimal.Zero)
	if err != nil {
		report.AddError(fmt.Sprintf("cannot derive ground truth, %s: %v", fieldUnitFreightPrice, err))
		return report
	}
	quantity, err := e.quantity(input, 1)
	if err != nil {
		report.AddError(fmt.Sprintf("cannot derive ground truth, %s: %v", fieldQuantity, err))
		return report
	}

	truth := ledger.ComputeFullDistribution(unitSale, unitCost, unitFreight, quantity)
	totalSale := unitSale.Mul(decimal.NewFromInt(quantity))

	report.Details["calculated"] = distributionDetails(truth)
	report.Details["expected_total"] = toFloat(totalSale)
	if truth.ProfitVault.IsNegative() {
		report.AddError(fmt.Sprintf(
			"below-cost sale: computed profit_vault is %s", truth.ProfitVault))
	}

	produced := e.fields.distributionMap(output)
	scores, producedSum := e.scoreComponents(report, produced, truth)

	report.Details["output"] = map[string]any{
		fieldCostVault:    toFloat(producedSum.cost),
		fieldFreightVault: toFloat(producedSum.freight),
		fieldProfitVault:  toFloat(producedSum.profit),
	}

	totalScore := e.bands.Score(producedSum.total(), totalSale, e.tolerance)
	if totalScore == 1.0 {
		report.PerFieldAccuracy["total_matches"] = 1.0
	} else {
		report.PerFieldAccuracy["total_matches"] = 0.0
		report.AddError(fmt.Sprintf(
			"produced components sum to %s, total sale price is %s",
			producedSum.total(), totalSale))
	}

	report.OverallAccuracy = scores[fieldCostVault]*weightFullCost +
		scores[fieldFreightVault]*weightFullFreight +
		scores[fieldProfitVault]*weightFullProfit

	e.crossCheckExpected(report, expected, truth)
	return report
}

// evaluatePartialPayment grades the proportional split of a partially paid
// sale. The proportion check is absolute to the cent: independent rounding
// of the three components is the only slack allowed.
func (e *Evaluator) evaluatePartialPayment(input, output, expected map[string]any) *models.EvaluationReport {
	report := models.NewEvaluationReport(string(OpPartialPayment))

	totalSale, err := e.fields.amount(input, fieldTotalSalePrice, decimal.Zero)
	if err != nil {
		report.AddError(fmt.Sprintf("cannot derive ground truth, %s: %v", fieldTotalSalePrice, err))
		return report
	}
	amountPaid, err := e.fields.amount(input, fieldAmountPaid, decimal.Zero)
	if err != nil {
		report.AddError(fmt.Sprintf("cannot derive ground truth, %s: %v", fieldAmountPaid, err))
		return report
	}
	unitCost, err := e.fields.amount(input, fieldUnitCostPrice, decimal.Zero)
	if err != nil {
		report.AddError(fmt.Sprintf("cannot derive ground truth, %s: %v", fieldUnitCostPrice, err))
		return report
	}
	unitFreight, err := e.fields.amount(input, fieldUnitFreightPrice, decimal.Zero)
	if err != nil {
		report.AddError(fmt.Sprintf("cannot derive ground truth, %s: %v", fieldUnitFreightPrice, err))
		return report
	}
	quantity, err := e.quantity(input, 0)
	if err != nil {
		report.AddError(fmt.Sprintf("cannot derive ground truth, %s: %v", fieldQuantity, err))
		return report
	}

	truth, err := ledger.ComputePartialDistribution(unitCost, unitFreight, quantity, amountPaid, totalSale)
	if err != nil {
		// Domain error, reported rather than raised: the record scores zero.
		report.AddError(err.Error())
		return report
	}

	proportion, _ := amountPaid.Div(totalSale).Float64()
	report.Details["proportion"] = proportion
	report.Details["expected_distribution"] = distributionDetails(truth)

	// A supplied total that disagrees with unitSalePrice × quantity is a
	// caller-input problem; record it without failing the evaluation.
	if unitSale, err := e.fields.amount(input, fieldUnitSalePrice, decimal.Zero); err == nil && !unitSale.IsZero() && quantity > 0 {
		derived := unitSale.Mul(decimal.NewFromInt(quantity))
		if !derived.Equal(totalSale) {
			report.AddError(fmt.Sprintf(
				"supplied %s %s disagrees with %s × %s = %s",
				fieldTotalSalePrice, totalSale, fieldUnitSalePrice, fieldQuantity, derived))
		}
	}

	produced := e.fields.distributionMap(output)
	scores, producedSum := e.scoreComponents(report, produced, truth)

	report.Details["output_distribution"] = map[string]any{
		fieldCostVault:    toFloat(producedSum.cost),
		fieldFreightVault: toFloat(producedSum.freight),
		fieldProfitVault:  toFloat(producedSum.profit),
	}

	proportionScore := 0.0
	if producedSum.total().Sub(amountPaid).Abs().LessThanOrEqual(proportionSlack) {
		proportionScore = 1.0
	} else {
		report.AddError(fmt.Sprintf(
			"produced components sum to %s, amount paid is %s",
			producedSum.total(), amountPaid))
	}
	report.PerFieldAccuracy["proportion_correct"] = proportionScore

	report.OverallAccuracy = scores[fieldCostVault]*weightPartialCost +
		scores[fieldFreightVault]*weightPartialFreight +
		scores[fieldProfitVault]*weightPartialProfit +
		proportionScore*weightPartialProportion

	e.crossCheckExpected(report, expected, truth)
	return report
}

// evaluateCapital grades the derived-capital formula and flags forbidden
// decreases of the append-only counters.
func (e *Evaluator) evaluateCapital(input, output map[string]any) *models.EvaluationReport {
	report := models.NewEvaluationReport(string(OpCapitalCalculation))

	income, err := e.fields.amount(input, fieldHistoricalIncome, decimal.Zero)
	if err != nil {
		report.AddError(fmt.Sprintf("cannot derive ground truth, %s: %v", fieldHistoricalIncome, err))
		return report
	}
	expense, err := e.fields.amount(input, fieldHistoricalExpense, decimal.Zero)
	if err != nil {
		report.AddError(fmt.Sprintf("cannot derive ground truth, %s: %v", fieldHistoricalExpense, err))
		return report
	}

	expectedCapital := ledger.ComputeCapital(income, expense)
	report.Details["expected_capital"] = toFloat(expectedCapital)
	report.Details["formula_used"] = "historical_income - historical_expense"

	producedCapital, err := e.fields.amount(output, fieldCurrentCapital, decimal.Zero)
	if err != nil {
		report.PerFieldAccuracy[fieldCurrentCapital] = 0.0
		report.AddError(fmt.Sprintf("%s: %v", fieldCurrentCapital, err))
		return report
	}
	report.Details["output_capital"] = toFloat(producedCapital)

	accuracy := e.bands.Score(producedCapital, expectedCapital, e.tolerance)
	report.PerFieldAccuracy[fieldCurrentCapital] = accuracy
	report.OverallAccuracy = accuracy
	if accuracy < 1.0 {
		report.AddError(fmt.Sprintf(
			"discrepancy in %s: expected %s, got %s",
			fieldCurrentCapital, expectedCapital, producedCapital))
	}

	// Historical counters are append-only. A decrease versus the supplied
	// prior value is an invariant violation: penalized and explained, not
	// fatal, so a reviewer can see why the score dropped.
	if prev, ok := e.fields.lookup(input, fieldPrevIncome); ok {
		if prevIncome, err := ledger.ParseAmount(prev); err == nil && income.LessThan(prevIncome) {
			report.AddError(fmt.Sprintf(
				"%s decreased: %s -> %s", fieldHistoricalIncome, prevIncome, income))
			report.OverallAccuracy *= monotonicPenalty
		}
	}
	if prev, ok := e.fields.lookup(input, fieldPrevExpense); ok {
		if prevExpense, err := ledger.ParseAmount(prev); err == nil && expense.LessThan(prevExpense) {
			report.AddError(fmt.Sprintf(
				"%s decreased: %s -> %s", fieldHistoricalExpense, prevExpense, expense))
			report.OverallAccuracy *= monotonicPenalty
		}
	}

	return report
}

// evaluatePaymentStatus grades the derived payment status and whether the
// record affected capital the way that status requires.
func (e *Evaluator) evaluatePaymentStatus(input, output map[string]any) *models.EvaluationReport {
	report := models.NewEvaluationReport(string(OpPaymentStatus))

	totalSale, err := e.fields.amount(input, fieldTotalSalePrice, decimal.Zero)
	if err != nil {
		report.AddError(fmt.Sprintf("cannot derive ground truth, %s: %v", fieldTotalSalePrice, err))
		return report
	}
	amountPaid, err := e.fields.amount(input, fieldAmountPaid, decimal.Zero)
	if err != nil {
		report.AddError(fmt.Sprintf("cannot derive ground truth, %s: %v", fieldAmountPaid, err))
		return report
	}

	expectedStatus := ledger.ClassifyPayment(amountPaid, totalSale)
	expectedAffects := expectedStatus.AffectsCapital()
	report.Details["expected_status"] = string(expectedStatus)
	report.Details["expected_affects_capital"] = expectedAffects

	producedStatus := ledger.PaymentStatus("")
	if raw, ok := e.fields.lookup(output, fieldPaymentStatus); ok {
		if s, isString := raw.(string); isString {
			producedStatus = ledger.NormalizeStatus(s)
		}
	}
	report.Details["output_status"] = string(producedStatus)

	statusScore := 0.0
	if producedStatus == expectedStatus {
		statusScore = 1.0
	} else {
		report.AddError(fmt.Sprintf(
			"incorrect status: expected %q, got %q", expectedStatus, producedStatus))
	}

	affectsScore := 0.0
	if raw, ok := e.fields.lookup(output, fieldAffectsCapital); ok {
		produced, parseOK := parseBool(raw)
		report.Details["output_affects_capital"] = raw
		if parseOK && produced == expectedAffects {
			affectsScore = 1.0
		}
	} else {
		// Not supplied: infer from whether any vault amount was posted.
		hasDistribution := e.hasPositiveDistribution(output)
		report.Details["output_affects_capital"] = hasDistribution
		if hasDistribution == expectedAffects {
			affectsScore = 1.0
		}
	}
	if affectsScore == 0.0 {
		report.AddError(fmt.Sprintf(
			"incorrect capital handling for status %q", expectedStatus))
	}

	report.PerFieldAccuracy[fieldPaymentStatus] = statusScore
	report.PerFieldAccuracy[fieldAffectsCapital] = affectsScore
	report.OverallAccuracy = statusScore*0.5 + affectsScore*0.5
	return report
}

// componentSums carries the parsed vault amounts of a produced output.
type componentSums struct {
	cost, freight, profit decimal.Decimal
}

func (c componentSums) total() decimal.Decimal {
	return c.cost.Add(c.freight).Add(c.profit)
}

// scoreComponents grades the three vault amounts in produced against
// truth, recording per-field accuracy and discrepancy errors. A field that
// fails to parse scores zero without aborting the remaining fields.
func (e *Evaluator) scoreComponents(report *models.EvaluationReport, produced map[string]any, truth ledger.Distribution) (map[string]float64, componentSums) {
	scores := make(map[string]float64, 3)
	var sums componentSums

	grade := func(canonical string, expected decimal.Decimal) decimal.Decimal {
		value, err := e.fields.amount(produced, canonical, decimal.Zero)
		if err != nil {
			scores[canonical] = 0.0
			report.PerFieldAccuracy[canonical] = 0.0
			report.AddError(fmt.Sprintf("%s: %v", canonical, err))
			return decimal.Zero
		}
		score := e.bands.Score(value, expected, e.tolerance)
		scores[canonical] = score
		report.PerFieldAccuracy[canonical] = score
		if score < 1.0 {
			report.AddError(fmt.Sprintf(
				"discrepancy in %s: expected %s, got %s", canonical, expected, value))
		}
		return value
	}

	sums.cost = grade(fieldCostVault, truth.CostVault)
	sums.freight = grade(fieldFreightVault, truth.FreightVault)
	sums.profit = grade(fieldProfitVault, truth.ProfitVault)
	return scores, sums
}

// crossCheckExpected verifies a caller-supplied expected_output against the
// computed ground truth. Disagreement points at a stale dataset, so it is
// recorded as an error entry without changing the score.
func (e *Evaluator) crossCheckExpected(report *models.EvaluationReport, expected map[string]any, truth ledger.Distribution) {
	if expected == nil {
		return
	}
	container := e.fields.distributionMap(expected)
	check := func(canonical string, want decimal.Decimal) {
		raw, ok := e.fields.lookup(container, canonical)
		if !ok {
			return
		}
		value, err := ledger.ParseAmount(raw)
		if err != nil || e.bands.Score(value, want, e.tolerance) == 1.0 {
			return
		}
		report.AddError(fmt.Sprintf(
			"expected_output disagrees with computed ground truth for %s: %s vs %s",
			canonical, value, want))
	}
	check(fieldCostVault, truth.CostVault)
	check(fieldFreightVault, truth.FreightVault)
	check(fieldProfitVault, truth.ProfitVault)
}

// quantity parses the unit count, which must be a whole number.
func (e *Evaluator) quantity(input map[string]any, fallback int64) (int64, error) {
	d, err := e.fields.amount(input, fieldQuantity, decimal.NewFromInt(fallback))
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("quantity %s is not a whole number", d)
	}
	return d.IntPart(), nil
}

// hasPositiveDistribution reports whether any of the three vault amounts in
// output parses to a positive value.
func (e *Evaluator) hasPositiveDistribution(output map[string]any) bool {
	container := e.fields.distributionMap(output)
	for _, canonical := range []string{fieldCostVault, fieldFreightVault, fieldProfitVault} {
		if raw, ok := e.fields.lookup(container, canonical); ok {
			if value, err := ledger.ParseAmount(raw); err == nil && value.IsPositive() {
				return true
			}
		}
	}
	return false
}

func parseBool(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes", "si", "sí", "1":
			return true, true
		case "false", "no", "0":
			return false, true
		}
	}
	return false, false
}

func distributionDetails(d ledger.Distribution) map[string]any {
	return map[string]any{
		fieldCostVault:    toFloat(d.CostVault),
		fieldFreightVault: toFloat(d.FreightVault),
		fieldProfitVault:  toFloat(d.ProfitVault),
		"total":           toFloat(d.Total),
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
