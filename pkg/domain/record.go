package domain

import "time"

// RunRecord is a persisted run: what was executed and how it ended.
type RunRecord struct {
	ID        string    `json:"id"`
	Program   string    `json:"program"`
	Input     string    `json:"input"`
	Head      int       `json:"head"`
	Result    Result    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}
