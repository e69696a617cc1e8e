// Package runner orchestrates batch evaluation runs: load a dataset,
// grade every case, aggregate, and write the timestamped JSON report the
// dashboard's report consumers expect. The evaluation core stays pure;
// every side effect of a run lives here.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"chronos_evaluation/pkg/core/dataset"
	"chronos_evaluation/pkg/core/evaluator"
	"chronos_evaluation/pkg/models"
)

// RunRepository persists finished runs. The Postgres implementation lives
// in pkg/core/store; tests inject their own.
type RunRepository interface {
	SaveRun(ctx context.Context, report *models.RunReport) error
}

// Runner executes batch evaluations for one service label.
type Runner struct {
	eval      *evaluator.Evaluator
	repo      RunRepository
	outputDir string
	service   string
	log       *logrus.Logger
}

// New creates a Runner writing reports into outputDir. repo may be nil;
// runs are then only written to disk.
func New(eval *evaluator.Evaluator, service, outputDir string, log *logrus.Logger) *Runner {
	if log == nil {
		log = logrus.New()
	}
	return &Runner{
		eval:      eval,
		outputDir: outputDir,
		service:   service,
		log:       log,
	}
}

// SetRepository injects a persistence backend for finished runs.
func (r *Runner) SetRepository(repo RunRepository) {
	r.repo = repo
}

// Run evaluates every case in the dataset at path and returns the full run
// report. Low scores are results, not errors: Run fails only on structural
// problems such as an unreadable dataset or an unwritable output dir.
func (r *Runner) Run(ctx context.Context, path string) (*models.RunReport, error) {
	cases, notes, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}

	report := &models.RunReport{
		RunID:      uuid.NewString(),
		Service:    r.service,
		Dataset:    filepath.Base(path),
		StartedAt:  time.Now().UTC(),
		ParseNotes: notes,
	}

	r.log.WithFields(logrus.Fields{
		"run_id":  report.RunID,
		"dataset": report.Dataset,
		"cases":   len(cases),
		"skipped": len(notes),
	}).Info("starting evaluation run")

	for i, c := range cases {
		result := r.eval.Evaluate(c.OperationType, c.InputData, c.OutputData, c.ExpectedOutput)
		report.Results = append(report.Results, models.CaseResult{
			Index:         i,
			OperationType: result.OperationType,
			Report:        result,
		})

		if len(result.Errors) > 0 {
			r.log.WithFields(logrus.Fields{
				"line":     c.Line,
				"op":       result.OperationType,
				"accuracy": result.OverallAccuracy,
			}).Debug("case graded with findings")
		}
	}

	report.FinishedAt = time.Now().UTC()
	report.Aggregate()

	if overall, ok := report.Metrics["overall"]; ok {
		r.log.WithFields(logrus.Fields{
			"run_id": report.RunID,
			"mean":   overall.Mean,
			"min":    overall.Min,
			"max":    overall.Max,
			"count":  overall.Count,
		}).Info("evaluation run finished")
	}

	if r.outputDir != "" {
		if err := r.writeArtifacts(report); err != nil {
			return nil, err
		}
	}

	if r.repo != nil {
		if err := r.repo.SaveRun(ctx, report); err != nil {
			return nil, fmt.Errorf("persist run: %w", err)
		}
	}

	return report, nil
}

// writeArtifacts writes the JSON report and its Markdown summary, one pair
// per run, timestamped the way the existing report consumers expect.
func (r *Runner) writeArtifacts(report *models.RunReport) error {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	stamp := report.StartedAt.Format("20060102_150405")
	base := fmt.Sprintf("%s_%s", r.service, stamp)

	jsonPath := filepath.Join(r.outputDir, base+".json")
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("write run report: %w", err)
	}
	r.log.WithField("path", jsonPath).Info("report written")

	summaryPath := filepath.Join(r.outputDir, base+".md")
	if err := os.WriteFile(summaryPath, []byte(RenderSummary(report)), 0o644); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}

	return nil
}
