package models

import (
	"time"
)

// EvaluationReport is the result of evaluating a single business-logic
// operation. The JSON shape is consumed by the dashboard's report viewers,
// so tags are part of the external contract.
type EvaluationReport struct {
	OperationType    string             `json:"operation_type"`
	OverallAccuracy  float64            `json:"overall_accuracy"`
	PerFieldAccuracy map[string]float64 `json:"per_field_accuracy"`
	Details          map[string]any     `json:"details,omitempty"`
	Errors           []string           `json:"errors"`
}

// NewEvaluationReport returns an empty report for the given operation.
// Accuracy starts at zero; evaluators only raise it.
func NewEvaluationReport(operationType string) *EvaluationReport {
	return &EvaluationReport{
		OperationType:    operationType,
		PerFieldAccuracy: make(map[string]float64),
		Details:          make(map[string]any),
		Errors:           []string{},
	}
}

// AddError appends a human-readable discrepancy to the report.
func (r *EvaluationReport) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// CaseResult pairs a dataset case with its evaluation outcome.
type CaseResult struct {
	Index         int               `json:"index"`
	OperationType string            `json:"operation_type"`
	Report        *EvaluationReport `json:"report"`
}

// ScoreMetrics aggregates overall accuracies across a run.
type ScoreMetrics struct {
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// RunReport is the persisted artifact of one batch evaluation run,
// written as a timestamped JSON document per run.
type RunReport struct {
	RunID      string                  `json:"run_id"`
	Service    string                  `json:"service"`
	Dataset    string                  `json:"dataset"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`
	Results    []CaseResult            `json:"detailed_results"`
	Metrics    map[string]ScoreMetrics `json:"metrics"`
	ParseNotes []string                `json:"parse_notes,omitempty"`
}

// Aggregate recomputes the "overall" metric plus one metric per
// operation type from the attached results.
func (r *RunReport) Aggregate() {
	r.Metrics = make(map[string]ScoreMetrics)

	byKey := map[string][]float64{}
	for _, res := range r.Results {
		if res.Report == nil {
			continue
		}
		byKey["overall"] = append(byKey["overall"], res.Report.OverallAccuracy)
		byKey[res.OperationType] = append(byKey[res.OperationType], res.Report.OverallAccuracy)
	}

	for key, scores := range byKey {
		m := ScoreMetrics{Count: len(scores)}
		if len(scores) == 0 {
			r.Metrics[key] = m
			continue
		}
		m.Min = scores[0]
		m.Max = scores[0]
		sum := 0.0
		for _, s := range scores {
			sum += s
			if s < m.Min {
				m.Min = s
			}
			if s > m.Max {
				m.Max = s
			}
		}
		m.Mean = sum / float64(len(scores))
		r.Metrics[key] = m
	}
}
