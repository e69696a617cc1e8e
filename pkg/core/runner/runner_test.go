package runner

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"chronos_evaluation/pkg/core/evaluator"
	"chronos_evaluation/pkg/models"
)

// memRepo captures persisted runs for assertions.
type memRepo struct {
	saved []*models.RunReport
}

func (m *memRepo) SaveRun(_ context.Context, report *models.RunReport) error {
	m.saved = append(m.saved, report)
	return nil
}

const testDataset = `
# one correct full sale, one broken one, one correct capital roll-up
{"operation_type": "sale_distribution", "input_data": {"precioVentaUnidad": 10000, "precioCompraUnidad": 6300, "precioFlete": 500, "cantidad": 10}, "output_data": {"boveda_monte": 63000, "flete_sur": 5000, "utilidades": 32000}}
{"operation_type": "sale_distribution", "input_data": {"precioVentaUnidad": 10000, "precioCompraUnidad": 6300, "precioFlete": 500, "cantidad": 10}, "output_data": {"boveda_monte": 60000, "flete_sur": 5000, "utilidades": 35000}}
{"operation_type": "capital_calculation", "input_data": {"historicoIngresos": 1500000, "historicoGastos": 350000}, "output_data": {"capitalActual": 1150000}}
not even close to json }{
`

func writeDataset(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "business_logic_test.jsonl")
	if err := os.WriteFile(path, []byte(testDataset), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestRunner_Run(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir)
	outDir := filepath.Join(dir, "results")

	repo := &memRepo{}
	r := New(evaluator.New(), "business_logic", outDir, quietLogger())
	r.SetRepository(repo)

	report, err := r.Run(context.Background(), path)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.RunID == "" {
		t.Error("run ID not assigned")
	}
	if len(report.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(report.Results))
	}
	if len(report.ParseNotes) != 1 {
		t.Errorf("parse notes = %v, want 1", report.ParseNotes)
	}

	overall, ok := report.Metrics["overall"]
	if !ok {
		t.Fatal("overall metrics missing")
	}
	if overall.Count != 3 {
		t.Errorf("overall count = %d, want 3", overall.Count)
	}
	if overall.Max != 1.0 {
		t.Errorf("overall max = %v, want 1.0", overall.Max)
	}
	// Case 2 under-posts cost by ~4.8% and over-posts profit by ~9.4%,
	// which grades to 0.73 and drags the mean below 1.
	if overall.Min >= 0.9 {
		t.Errorf("overall min = %v, want < 0.9", overall.Min)
	}
	if overall.Mean >= 1.0 || overall.Mean <= overall.Min {
		t.Errorf("overall mean = %v, want between min and 1.0", overall.Mean)
	}

	if byOp, ok := report.Metrics["sale_distribution"]; !ok || byOp.Count != 2 {
		t.Errorf("sale_distribution metrics = %+v, want count 2", byOp)
	}

	if len(repo.saved) != 1 || repo.saved[0].RunID != report.RunID {
		t.Errorf("repository saved %d runs, want this run once", len(repo.saved))
	}
}

func TestRunner_WritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir)
	outDir := filepath.Join(dir, "results")

	r := New(evaluator.New(), "business_logic", outDir, quietLogger())
	report, err := r.Run(context.Background(), path)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}

	var jsonPath, mdPath string
	for _, entry := range entries {
		switch filepath.Ext(entry.Name()) {
		case ".json":
			jsonPath = filepath.Join(outDir, entry.Name())
		case ".md":
			mdPath = filepath.Join(outDir, entry.Name())
		}
		if !strings.HasPrefix(entry.Name(), "business_logic_") {
			t.Errorf("artifact %q not prefixed with the service label", entry.Name())
		}
	}
	if jsonPath == "" || mdPath == "" {
		t.Fatalf("artifacts = %v, want one .json and one .md", entries)
	}

	// The JSON artifact must round-trip to the same run.
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var persisted models.RunReport
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if persisted.RunID != report.RunID {
		t.Errorf("persisted run ID %q, want %q", persisted.RunID, report.RunID)
	}
	if len(persisted.Results) != len(report.Results) {
		t.Errorf("persisted %d results, want %d", len(persisted.Results), len(report.Results))
	}
}

func TestRunner_MissingDataset(t *testing.T) {
	r := New(evaluator.New(), "business_logic", t.TempDir(), quietLogger())
	if _, err := r.Run(context.Background(), "does/not/exist.jsonl"); err == nil {
		t.Error("expected error for missing dataset")
	}
}

func TestRenderSummary(t *testing.T) {
	report := &models.RunReport{
		RunID:   "test-run",
		Service: "business_logic",
		Dataset: "cases.jsonl",
		Results: []models.CaseResult{
			{
				Index:         0,
				OperationType: "sale_distribution",
				Report: &models.EvaluationReport{
					OperationType:   "sale_distribution",
					OverallAccuracy: 0.73,
					Errors:          []string{"discrepancy in cost_vault: expected 63000, got 60000"},
				},
			},
		},
		ParseNotes: []string{"line 4: all parsing strategies failed"},
	}
	report.Aggregate()

	summary := RenderSummary(report)

	for _, want := range []string{
		"# Evaluation Run test-run",
		"| overall |",
		"discrepancy in cost_vault",
		"Skipped lines",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}
