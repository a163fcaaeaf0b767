package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	trackermodels "io.mapwave.beacon/internal/models/tracker"
)

func TestPosition_Validate(t *testing.T) {
	valid := trackermodels.Position{
		TrackerID:  "tracker-1",
		Latitude:   52.52,
		Longitude:  13.405,
		RecordedAt: time.Now(),
	}
	assert.NoError(t, valid.Validate())

	noID := valid
	noID.TrackerID = ""
	assert.Error(t, noID.Validate())

	badLat := valid
	badLat.Latitude = -90.5
	assert.Error(t, badLat.Validate())

	badLng := valid
	badLng.Longitude = 180.5
	assert.Error(t, badLng.Validate())

	noTime := valid
	noTime.RecordedAt = time.Time{}
	assert.Error(t, noTime.Validate())
}
