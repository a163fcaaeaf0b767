package models

import "time"

type GetHistoryRequest struct {
	TrackerID string     `json:"trackerId" binding:"required"`
	Since     *time.Time `json:"since,omitempty"`
	Limit     int        `json:"limit,omitempty"`
}
