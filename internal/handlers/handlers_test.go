package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"io.mapwave.beacon/internal/handlers"
)

// These tests cover the request validation paths, which reject before any
// database access happens.

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestUpdateLogo_Validation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handlers.NewBrandingHandler(nil, nil, zap.NewNop().Sugar())
	router := gin.New()
	router.POST("/update-logo", h.UpdateLogo)

	cases := map[string]string{
		"malformed json": `{"logo_url": `,
		"missing field":  `{}`,
		"relative url":   `{"logo_url": "/static/logo.png"}`,
		"bad scheme":     `{"logo_url": "ftp://example.com/logo.png"}`,
		"no host":        `{"logo_url": "https://"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := post(router, "/update-logo", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateStation_Validation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handlers.NewStationsHandler(nil, nil, zap.NewNop().Sugar())
	router := gin.New()
	router.POST("/create-station", h.CreateStation)

	cases := map[string]string{
		"malformed json":     `{"name": `,
		"missing name":       `{"latitude": 52.52, "longitude": 13.4}`,
		"latitude overflow":  `{"name": "HQ", "latitude": 91.0, "longitude": 13.4}`,
		"longitude overflow": `{"name": "HQ", "latitude": 52.5, "longitude": -181.0}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := post(router, "/create-station", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestDeleteStation_Validation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handlers.NewStationsHandler(nil, nil, zap.NewNop().Sugar())
	router := gin.New()
	router.POST("/delete-station", h.DeleteStation)

	w := post(router, "/delete-station", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHistory_Validation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handlers.NewTrackersHandler(nil, nil, zap.NewNop().Sugar())
	router := gin.New()
	router.POST("/get-history", h.GetHistory)

	cases := map[string]string{
		"malformed json":     `{"trackerId": `,
		"missing tracker id": `{"limit": 10}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := post(router, "/get-history", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
