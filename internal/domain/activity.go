package domain

import "time"

// ActivityType represents the kind of feed entry.
type ActivityType string

// ActivityReview wraps a review written by the viewer or someone they follow.
const ActivityReview ActivityType = "review"

// Activity is a feed entry composed at read time. Activities are not stored.
type Activity struct {
	Type      ActivityType `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Review    *Review      `json:"review,omitempty"`
}
