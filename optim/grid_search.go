// Package optim grid-searches an experiment.Config's parameters for the
// combination minimizing a chosen result field, adapted from the
// teacher's internal/optim.GridSearch (itself a recursive Cartesian
// search over named parameter ranges, unchanged here beyond swapping the
// objective from a sim.Result's metric map to an experiment.Result
// field).
package optim

import (
	"math"

	"github.com/jaideep777/pspm/experiment"
)

// GridSearch sweeps named parameters over independent ranges.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

// NewGridSearch builds a search over params, where ranges[i] lists the
// candidate values for params[i].
func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Objective extracts the scalar to minimize from a completed experiment's
// Result.
type Objective func(*experiment.Result) float64

// Search runs buildExperiment for every point in the parameter grid,
// returning the parameter set minimizing objective and that minimal
// value.
func (g *GridSearch) Search(
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	objective Objective,
) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	g.searchRecursive(0, make(map[string]float64), buildExperiment, objective, &best, &bestParams)

	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) {
	if depth == len(g.paramNames) {
		exp, err := buildExperiment(current)
		if err != nil {
			return
		}

		result, err := exp.Run()
		if err != nil {
			return
		}

		val := objective(result)
		if val < *best {
			*best = val
			params := make(map[string]float64, len(current))
			for k, v := range current {
				params[k] = v
			}
			*bestParams = params
		}
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(depth+1, newParams, buildExperiment, objective, best, bestParams)
	}
}
