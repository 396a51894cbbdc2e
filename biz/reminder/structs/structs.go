// Package structs defines reminder scan results.
package structs

import "time"

// Result summarises one reminder scan.
type Result struct {
	Scanned   int       `json:"scanned"`
	Sent      int       `json:"sent"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	StartedAt time.Time `json:"started_at"`
	WindowEnd time.Time `json:"window_end"`
}

type Count struct {
	Count int `json:"count"`
}
