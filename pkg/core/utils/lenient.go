// Package utils holds the lenient-parsing helpers shared by the dataset
// loader and the report renderer. Evaluation inputs are frequently
// AI-produced JSON with the usual defects (single quotes, trailing commas,
// markdown fences), so parsing degrades through repair strategies instead
// of failing on the first bad byte.
package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON fixes the common defects of machine-generated JSON: unquoted
// or single-quoted keys, unclosed brackets, TRUE/FALSE/Null casing,
// trailing commas, comments, and surrounding markdown fences.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// DecodeLenient unmarshals input into out, trying strategies from strict
// to forgiving:
//
//  1. standard JSON
//  2. repaired JSON
//  3. HJSON (comments, unquoted keys, optional commas)
//
// It returns an error only when every strategy fails.
func DecodeLenient(input string, out any) error {
	if err := json.Unmarshal([]byte(input), out); err == nil {
		return nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), out); err == nil {
			return nil
		}
	}

	if err := hjson.Unmarshal([]byte(input), out); err == nil {
		return nil
	}

	return fmt.Errorf("all parsing strategies failed")
}

// DecodeRecordMap is DecodeLenient specialized to the loosely typed
// field maps the evaluator consumes.
func DecodeRecordMap(input string) (map[string]any, error) {
	var m map[string]any
	if err := DecodeLenient(input, &m); err != nil {
		return nil, err
	}
	return m, nil
}
