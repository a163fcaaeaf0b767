package models

import (
	trackermodels "io.mapwave.beacon/internal/models/tracker"
)

type CreateStationResponse struct {
	Station trackermodels.Station `json:"station"`
	Message string                `json:"message"`
}
