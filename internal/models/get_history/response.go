package models

import (
	trackermodels "io.mapwave.beacon/internal/models/tracker"
)

type GetHistoryResponse struct {
	TrackerID string                   `json:"trackerId"`
	Positions []trackermodels.Position `json:"positions"`
}
