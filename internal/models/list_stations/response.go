package models

import (
	trackermodels "io.mapwave.beacon/internal/models/tracker"
)

type ListStationsResponse struct {
	Stations []trackermodels.Station `json:"stations"`
}
