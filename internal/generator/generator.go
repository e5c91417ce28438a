package generator

// =============================================================================
// GENERATOR: ONE GRAPH IN, ONE SET OF DEFINITIONS OUT
// =============================================================================
//
// A run is strictly sequential:
// 1. chosen directives (flash before code partition)
// 2. partition tables
// 3. CUE contract check of the definitions and the layout
// 4. Rego layout policy
//
// The first failure stops the run. Build constants derived from partially
// wrong geometry are worse than no constants at all.
// =============================================================================

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/robert-at-pretension-io/dtflash/internal/config"
	"github.com/robert-at-pretension-io/dtflash/internal/defs"
	"github.com/robert-at-pretension-io/dtflash/internal/devicetree"
	"github.com/robert-at-pretension-io/dtflash/internal/flash"
	"github.com/robert-at-pretension-io/dtflash/internal/policy"
	"github.com/robert-at-pretension-io/dtflash/internal/props"
	"github.com/robert-at-pretension-io/dtflash/internal/validator"
)

// Generator runs extractions with a fixed configuration
type Generator struct {
	// Configuration loaded from dtflash.json
	Config *config.Config

	// Root is the directory policy file patterns are relative to
	Root string

	Log logrus.FieldLogger
}

// Result is the outcome of one run
type Result struct {
	Definitions *defs.Sink
	Layout      flash.Layout
	Policy      *policy.Result
}

// PolicyError is returned when the layout policy reports errors
type PolicyError struct {
	Violations []policy.Violation
}

func (e *PolicyError) Error() string {
	var n int
	first := ""
	for _, v := range e.Violations {
		if v.Severity != "error" {
			continue
		}
		if n == 0 {
			first = fmt.Sprintf("%s: %s", v.Rule, v.Message)
		}
		n++
	}
	if n == 1 {
		return "flash layout policy failed: " + first
	}
	return fmt.Sprintf("flash layout policy failed with %d errors, first: %s", n, first)
}

// New creates a generator. A nil config uses defaults, a nil logger logs to
// stderr at the configured level.
func New(cfg *config.Config, log logrus.FieldLogger) *Generator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(cfg.Level())
		log = l
	}
	return &Generator{Config: cfg, Root: ".", Log: log}
}

// GenerateFile loads a reduced graph document and runs Generate on it
func (g *Generator) GenerateFile(ctx context.Context, path string) (*Result, error) {
	graph, err := devicetree.Load(path)
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx, graph)
}

// Generate runs one extraction over graph
func (g *Generator) Generate(ctx context.Context, graph *devicetree.Graph) (*Result, error) {
	start := time.Now()
	sink := defs.NewSink()
	session := flash.NewSession(g.Config, graph, sink, props.New(graph, sink), g.Log)

	if err := session.ExtractChosen(); err != nil {
		return nil, fmt.Errorf("extracting chosen nodes: %w", err)
	}
	if err := session.ExtractPartitions(); err != nil {
		return nil, fmt.Errorf("extracting partitions: %w", err)
	}

	result := &Result{Definitions: sink, Layout: session.Layout()}

	if g.Config.ValidationEnabled() {
		v, err := validator.New()
		if err != nil {
			return nil, err
		}
		if err := v.Validate(sink.Snapshot()); err != nil {
			g.Log.WithField("errors", v.ValidationErrors(sink.Snapshot())).Error("definitions rejected")
			return nil, err
		}
		if err := v.ValidateLayout(result.Layout); err != nil {
			return nil, err
		}
	}

	if g.Config.PolicyEnabled() {
		files, err := g.Config.ResolvePolicyFiles(g.Root)
		if err != nil {
			return nil, fmt.Errorf("resolving policy files: %w", err)
		}
		engine, err := policy.New(files...)
		if err != nil {
			return nil, err
		}
		pr, err := engine.Evaluate(ctx, result.Layout)
		if err != nil {
			return nil, err
		}
		result.Policy = pr
		for _, v := range pr.Violations {
			entry := g.Log.WithFields(logrus.Fields{"rule": v.Rule, "node": v.Node})
			switch v.Severity {
			case "error":
				entry.Error(v.Message)
			case "warning":
				entry.Warn(v.Message)
			default:
				entry.Info(v.Message)
			}
		}
		if pr.HasErrors() {
			return nil, &PolicyError{Violations: pr.Violations}
		}
	}

	g.Log.WithFields(logrus.Fields{
		"nodes":       graph.Len(),
		"definitions": sink.Len(),
		"partitions":  len(result.Layout.Partitions),
		"duration":    time.Since(start).String(),
	}).Info("flash definitions generated")

	return result, nil
}
