package models

type DeleteStationResponse struct {
	StationID string `json:"stationId"`
	Message   string `json:"message"`
}
