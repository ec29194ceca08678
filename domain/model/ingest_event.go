package model

import "time"

// IngestEvent is published after a fetch cycle writes at least one record
type IngestEvent struct {
	Type       string    `json:"type"`
	Query      string    `json:"query"`
	Inserted   int64     `json:"inserted"`
	Modified   int64     `json:"modified"`
	VideoIDs   []string  `json:"videoIds"`
	Watermark  time.Time `json:"watermark"`
	FinishedAt time.Time `json:"finishedAt"`
}

const IngestEventType = "ingest"
