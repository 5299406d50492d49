// Package todo turns a location's scores, market metrics and metro context
// into remediation TODOs. Every function here is pure and deterministic.
package todo

import (
	"github.com/sells-group/sitepicker/internal/model"
)

// Generate runs the zoning, demographics and pricing rules in that order and
// returns the TODOs that fired. The result is never nil.
func Generate(scores model.LocationScores, metrics model.UpstreamMetrics, metro model.MetroInfo) []model.LocationTodo {
	todos := make([]model.LocationTodo, 0, 3)
	if t := Zoning(scores, metrics); t != nil {
		todos = append(todos, *t)
	}
	if t := Demographics(scores, metrics); t != nil {
		todos = append(todos, *t)
	}
	if t := Pricing(scores, metrics, metro); t != nil {
		todos = append(todos, *t)
	}
	return todos
}
