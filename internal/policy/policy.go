package policy

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/rego"

	"github.com/robert-at-pretension-io/dtflash/internal/flash"
)

//go:embed layout.rego
var layoutModule string

// Engine evaluates OPA layout policies against a resolved flash layout
type Engine struct {
	violations rego.PreparedEvalQuery
	summary    rego.PreparedEvalQuery
}

// Violation represents a policy violation
type Violation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Node     string `json:"node"`
	Message  string `json:"message"`
}

// Result contains the evaluation results
type Result struct {
	Violations []Violation `json:"violations"`
	Summary    Summary     `json:"summary"`
}

// HasErrors reports whether any violation has error severity
func (r *Result) HasErrors() bool {
	return r != nil && r.Summary.Errors > 0
}

// Summary provides aggregate counts
type Summary struct {
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Info            int `json:"info"`
}

// New creates a policy engine from the embedded layout rules plus any
// extra .rego files. Extra modules extend package dtflash.layout.
func New(extraFiles ...string) (*Engine, error) {
	modules := []func(*rego.Rego){rego.Module("layout.rego", layoutModule)}
	for _, f := range extraFiles {
		content, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		modules = append(modules, rego.Module(f, string(content)))
	}

	ctx := context.Background()

	opts := append(append([]func(*rego.Rego){}, modules...), rego.Query("data.dtflash.layout.violations"))
	violations, err := rego.New(opts...).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("preparing violations query: %w", err)
	}

	opts = append(append([]func(*rego.Rego){}, modules...), rego.Query("data.dtflash.layout.summary"))
	summary, err := rego.New(opts...).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("preparing summary query: %w", err)
	}

	return &Engine{violations: violations, summary: summary}, nil
}

// Evaluate runs the policies against a layout
func (e *Engine) Evaluate(ctx context.Context, layout flash.Layout) (*Result, error) {
	input, err := toInput(layout)
	if err != nil {
		return nil, fmt.Errorf("converting input: %w", err)
	}

	result := &Result{}

	rs, err := e.violations.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("evaluating violations: %w", err)
	}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		if list, ok := rs[0].Expressions[0].Value.([]interface{}); ok {
			for _, item := range list {
				vmap, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				result.Violations = append(result.Violations, Violation{
					Rule:     getString(vmap, "rule"),
					Severity: getString(vmap, "severity"),
					Node:     getString(vmap, "node"),
					Message:  getString(vmap, "message"),
				})
			}
		}
	}

	rs, err = e.summary.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("evaluating summary: %w", err)
	}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		if smap, ok := rs[0].Expressions[0].Value.(map[string]interface{}); ok {
			result.Summary = Summary{
				TotalViolations: getInt(smap, "total_violations"),
				Errors:          getInt(smap, "errors"),
				Warnings:        getInt(smap, "warnings"),
				Info:            getInt(smap, "info"),
			}
		}
	}

	return result, nil
}

// toInput converts the layout to a generic map. Numbers stay json.Number so
// 64-bit addresses survive the round trip.
func toInput(layout flash.Layout) (map[string]interface{}, error) {
	data, err := json.Marshal(layout)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out map[string]interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getInt(m map[string]interface{}, key string) int {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case json.Number:
			i, _ := n.Int64()
			return int(i)
		}
	}
	return 0
}
