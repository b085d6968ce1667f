package models

// AskRequest is the POST /ask body. Metadata is opaque caller context;
// no strategy reads it today but it is passed through for forward
// compatibility.
type AskRequest struct {
	Question string                 `json:"question"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
