package domain

import "time"

// Interaction is one completed query/response cycle kept for follow-up context.
type Interaction struct {
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
	Query     string    `json:"query"`
	Command   string    `json:"command"`
	Result    string    `json:"result"`
}
