package model

import "time"

// TodoType is the rule category that produced a LocationTodo.
type TodoType string

const (
	TodoZoning       TodoType = "zoning"
	TodoDemographics TodoType = "demographics"
	TodoPricing      TodoType = "pricing"
)

// LocationTodo is a remediation item explaining what must change before a
// location can proceed. Message and table cells are plain text.
type LocationTodo struct {
	Type      TodoType  `json:"type"`
	Scenario  string    `json:"scenario"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	DataTable []DataRow `json:"dataTable,omitempty"`
}

// DataRow is one line of a TODO comparison table. A nil Gap means the row
// has no gap column, which is distinct from an empty gap cell.
type DataRow struct {
	Label   string  `json:"label"`
	Current string  `json:"current"`
	Needed  string  `json:"needed"`
	Gap     *string `json:"gap,omitempty"`
}

// Location is a suggested or proposed site.
type Location struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Address   string           `json:"address"`
	City      string           `json:"city"`
	State     string           `json:"state"`
	Lat       float64          `json:"lat"`
	Lng       float64          `json:"lng"`
	Status    string           `json:"status,omitempty"`
	Votes     int              `json:"votes"`
	Proposed  bool             `json:"proposed,omitempty"`
	Scores    *ScoreRow        `json:"scores,omitempty"`
	Metrics   *UpstreamMetrics `json:"metrics,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// Evaluation is one persisted run of the TODO engine for a location.
type Evaluation struct {
	ID         string         `json:"id"`
	LocationID string         `json:"location_id"`
	Metro      MetroInfo      `json:"metro"`
	Scores     LocationScores `json:"scores"`
	Todos      []LocationTodo `json:"todos"`
	CreatedAt  time.Time      `json:"created_at"`
}
