package model

import "time"

// AnalyticsEvent is a single tracked user interaction.
type AnalyticsEvent struct {
	ID         string         `json:"id"`
	Event      string         `json:"event"`
	Properties map[string]any `json:"properties,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	UserID     string         `json:"userId,omitempty"`
}
