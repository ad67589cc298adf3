package workbook

import (
	"encoding/json"
	"fmt"
	"os"
)

// Problem locates one workbook problem inside the source PDF. Page numbers
// are 1-indexed and inclusive.
type Problem struct {
	ProblemNumber int `json:"problem_number"`
	StartPage     int `json:"start_page"`
	EndPage       int `json:"end_page"`
}

// LoadProblems reads and validates the problems file: a JSON array of
// {problem_number, start_page, end_page} objects.
func LoadProblems(path string) ([]Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problems file %s: %w", path, err)
	}

	var problems []Problem
	if err := json.Unmarshal(data, &problems); err != nil {
		return nil, fmt.Errorf("failed to parse problems file %s: %w", path, err)
	}
	if len(problems) == 0 {
		return nil, fmt.Errorf("problems file %s contains no problems", path)
	}

	for i, p := range problems {
		if p.ProblemNumber < 1 {
			return nil, fmt.Errorf("problem at index %d: problem_number must be positive, got %d", i, p.ProblemNumber)
		}
		if p.StartPage < 1 {
			return nil, fmt.Errorf("problem %d: start_page must be positive, got %d", p.ProblemNumber, p.StartPage)
		}
		if p.EndPage < p.StartPage {
			return nil, fmt.Errorf("problem %d: end_page %d precedes start_page %d", p.ProblemNumber, p.EndPage, p.StartPage)
		}
	}
	return problems, nil
}
