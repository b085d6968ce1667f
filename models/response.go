package models

// AnswerEnvelope is the uniform response shape every strategy returns.
// The zero value marshals to {"ok":false}, which is exactly the
// rejection envelope the controller needs for bad input.
type AnswerEnvelope struct {
	OK     bool   `json:"ok"`
	Intent Intent `json:"intent,omitempty"`
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`

	// Structured-data strategy fields.
	SQL     string                 `json:"sql,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Columns []string               `json:"columns,omitempty"`
	Rows    [][]interface{}        `json:"rows,omitempty"`

	// Document strategy field: source keys actually included in the
	// context bundle.
	Files []string `json:"files,omitempty"`
}
