// Package runner orchestrates the three pipeline stages. Stages declare the
// files they consume and produce; the runner materializes missing upstream
// outputs instead of stages silently invoking each other.
package runner

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Nathan-Omenge/energymap-ai/internal/config"
	"github.com/Nathan-Omenge/energymap-ai/internal/demand"
	"github.com/Nathan-Omenge/energymap-ai/internal/scenario"
	"github.com/Nathan-Omenge/energymap-ai/internal/scoring"
)

// Stage is one pipeline step with declared file dependencies.
type Stage struct {
	Name     string
	Requires []string
	Produces []string
	Run      func(ctx context.Context) error
}

// Runner coordinates stage execution. Stages run strictly in sequence
// within one pipeline run; at most one run should be in flight at a time,
// enforced by the job Tracker, not here.
type Runner struct {
	cfg    *config.Config
	stages []Stage
}

// New builds a runner over the standard scoring, demand, and scenario stages.
func New(cfg *config.Config) *Runner {
	p := cfg.Paths
	return &Runner{
		cfg: cfg,
		stages: []Stage{
			{
				Name:     "scoring",
				Requires: []string{p.ScoringInput},
				Produces: []string{p.ScoringOutputGeoJSON, p.ScoringOutputCSV},
				Run: func(ctx context.Context) error {
					_, err := scoring.New(cfg).Run(ctx)
					return err
				},
			},
			{
				Name:     "demand",
				Requires: []string{p.ScoringOutputGeoJSON},
				Produces: []string{p.DemandOutputGeoJSON, p.DemandOutputCSV, p.SummaryStatsJSON},
				Run: func(ctx context.Context) error {
					_, _, err := demand.New(cfg).Run(ctx)
					return err
				},
			},
			{
				Name:     "scenarios",
				Requires: []string{p.DemandOutputGeoJSON},
				Produces: []string{p.ScenarioComparisonCSV},
				Run: func(ctx context.Context) error {
					_, err := scenario.New(cfg).Run(ctx)
					return err
				},
			},
		},
	}
}

// RunAll executes every stage in order, recomputing all derived outputs
// from scratch.
func (r *Runner) RunAll(ctx context.Context) error {
	for _, s := range r.stages {
		if err := r.runStage(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// RunStage executes one named stage, first materializing any missing
// required inputs by running their producing stages.
func (r *Runner) RunStage(ctx context.Context, name string) error {
	for _, s := range r.stages {
		if s.Name == name {
			return r.resolve(ctx, s, map[string]bool{})
		}
	}
	return eris.Errorf("runner: unknown stage %q", name)
}

// resolve runs the producers of any missing required input, then the stage
// itself. A required input with no producing stage is left to the stage's
// own load path, which reports the missing file.
func (r *Runner) resolve(ctx context.Context, s Stage, visited map[string]bool) error {
	if visited[s.Name] {
		return eris.Errorf("runner: dependency cycle at stage %q", s.Name)
	}
	visited[s.Name] = true

	for _, input := range s.Requires {
		if fileExists(input) {
			continue
		}
		producer, ok := r.producerOf(input)
		if !ok {
			continue
		}
		zap.L().Info("runner: materializing missing input",
			zap.String("stage", s.Name),
			zap.String("input", input),
			zap.String("producer", producer.Name),
		)
		if err := r.resolve(ctx, producer, visited); err != nil {
			return err
		}
	}

	return r.runStage(ctx, s)
}

func (r *Runner) runStage(ctx context.Context, s Stage) error {
	log := zap.L().With(zap.String("stage", s.Name))
	log.Info("runner: stage starting")

	if err := s.Run(ctx); err != nil {
		log.Error("runner: stage failed", zap.Error(err))
		return err
	}

	log.Info("runner: stage complete")
	return nil
}

func (r *Runner) producerOf(path string) (Stage, bool) {
	for _, s := range r.stages {
		for _, out := range s.Produces {
			if out == path {
				return s, true
			}
		}
	}
	return Stage{}, false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
