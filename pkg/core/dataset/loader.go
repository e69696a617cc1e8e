// Package dataset loads JSONL evaluation cases. One line is one case;
// lines that fail even lenient parsing become notes on the run instead of
// aborting it, so a single bad record never sinks a batch.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"chronos_evaluation/pkg/core/utils"
)

// Case is one evaluation sample: the operation to grade, the record that
// was fed to the producer, what the producer emitted, and optionally what
// the dataset author expected.
type Case struct {
	OperationType  string         `json:"operation_type"`
	InputData      map[string]any `json:"input_data"`
	OutputData     map[string]any `json:"output_data"`
	ExpectedOutput map[string]any `json:"expected_output,omitempty"`

	Line int `json:"-"`
}

// Load reads a JSONL dataset file. The second result lists per-line parse
// failures; they are reportable, not fatal.
func Load(path string) ([]Case, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads JSONL cases from r. Blank lines and #-comments are skipped.
// Each remaining line is decoded leniently (strict JSON, then repair, then
// HJSON) because many datasets are assembled from raw AI output.
func Parse(r io.Reader) ([]Case, []string, error) {
	var cases []Case
	var notes []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var c Case
		if err := utils.DecodeLenient(line, &c); err != nil {
			notes = append(notes, fmt.Sprintf("line %d: %v", lineNo, err))
			continue
		}
		if c.OperationType == "" {
			notes = append(notes, fmt.Sprintf("line %d: missing operation_type", lineNo))
			continue
		}
		c.Line = lineNo
		cases = append(cases, c)
	}
	if err := scanner.Err(); err != nil {
		return cases, notes, fmt.Errorf("read dataset: %w", err)
	}

	return cases, notes, nil
}
