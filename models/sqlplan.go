package models

// SQLPlan is the model-generated statement prior to validation: the
// SQL text with named placeholders, the placeholder values, and an
// informational rationale that is never validated. It is consumed once
// by the validator and then the executor, never persisted.
type SQLPlan struct {
	SQL       string                 `json:"sql"`
	Params    map[string]interface{} `json:"params"`
	Rationale string                 `json:"rationale"`
}
