package dataset

import (
	"strings"
	"testing"
)

func TestParse_WellFormedLines(t *testing.T) {
	input := `
# reference sale, graded correct
{"operation_type": "sale_distribution", "input_data": {"precioVentaUnidad": 10000, "cantidad": 10}, "output_data": {"boveda_monte": 63000}}

{"operation_type": "capital_calculation", "input_data": {"historicoIngresos": 1500000}, "output_data": {"capitalActual": 1150000}, "expected_output": {"capitalActual": 1150000}}
`

	cases, notes, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("notes = %v, want none", notes)
	}
	if len(cases) != 2 {
		t.Fatalf("got %d cases, want 2", len(cases))
	}

	if cases[0].OperationType != "sale_distribution" {
		t.Errorf("case 0 operation = %q", cases[0].OperationType)
	}
	if cases[0].Line != 3 {
		t.Errorf("case 0 line = %d, want 3", cases[0].Line)
	}
	if cases[1].ExpectedOutput == nil {
		t.Error("case 1 expected_output not parsed")
	}
	if qty, ok := cases[0].InputData["cantidad"].(float64); !ok || qty != 10 {
		t.Errorf("cantidad = %v, want 10", cases[0].InputData["cantidad"])
	}
}

func TestParse_LenientRecovery(t *testing.T) {
	// Single quotes and a trailing comma: typical AI-assembled lines that
	// strict JSON rejects but the repair pass fixes.
	input := `{'operation_type': 'payment_status', 'input_data': {'montoTotal': 100}, 'output_data': {'estadoPago': 'pendiente'},}`

	cases, notes, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(cases) != 1 {
		t.Fatalf("got %d cases (notes: %v), want 1 repaired case", len(cases), notes)
	}
	if cases[0].OperationType != "payment_status" {
		t.Errorf("operation = %q, want payment_status", cases[0].OperationType)
	}
}

func TestParse_BadLinesBecomeNotes(t *testing.T) {
	input := `{"operation_type": "venta", "input_data": {}, "output_data": {}}
this is not a record at all {{{
{"input_data": {}, "output_data": {}}
`

	cases, notes, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(cases) != 1 {
		t.Errorf("got %d cases, want 1", len(cases))
	}
	if len(notes) != 2 {
		t.Fatalf("notes = %v, want 2", notes)
	}
	if !strings.Contains(notes[1], "missing operation_type") {
		t.Errorf("note = %q, want missing operation_type", notes[1])
	}
}
