package models

type DeleteStationRequest struct {
	StationID string `json:"stationId" binding:"required"`
}
