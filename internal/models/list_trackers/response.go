package models

import (
	trackermodels "io.mapwave.beacon/internal/models/tracker"
)

type ListTrackersResponse struct {
	Trackers []trackermodels.Tracker `json:"trackers"`
}
