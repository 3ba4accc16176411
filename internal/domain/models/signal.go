package models

import "time"

// ValidatedSignal is a candidate annotated with the validation verdict.
// Created once per candidate and immutable afterwards.
type ValidatedSignal struct {
	Candidate       SignalCandidate `json:"candidate"`
	IsValid         bool            `json:"isValid"`
	Confidence      float64         `json:"confidence"` // 0-100
	RiskScore       float64         `json:"riskScore"`  // 0-10
	Warnings        []string        `json:"warnings,omitempty"`
	Recommendations []string        `json:"recommendations,omitempty"`
	Snapshot        *MarketSnapshot `json:"snapshot,omitempty"`
	ValidatedAt     time.Time       `json:"validatedAt"`
}
