package api

import "github.com/five82/alfalfa/internal/sim"

// runPayload mirrors GET runs/{id}.
type runPayload struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	ErrorLog string `json:"errorLog"`
}

// uploadRequest mirrors POST models/upload.
type uploadRequest struct {
	ModelName string `json:"modelName"`
}

// uploadPayload is the answer to models/upload: where and how to post the file.
type uploadPayload struct {
	URL     string            `json:"url"`
	Fields  map[string]string `json:"fields"`
	ModelID string            `json:"modelId"`
}

// createRunPayload mirrors POST models/{id}/createRun.
type createRunPayload struct {
	RunID string `json:"runId"`
}

// startRequest mirrors POST runs/{id}/start.
type startRequest struct {
	StartDatetime string  `json:"startDatetime"`
	EndDatetime   string  `json:"endDatetime"`
	Timescale     float64 `json:"timescale"`
	ExternalClock bool    `json:"externalClock"`
	Realtime      bool    `json:"realtime"`
}

// pointsRequest filters POST runs/{id}/points and runs/{id}/points/values.
type pointsRequest struct {
	PointTypes []sim.PointType `json:"pointTypes"`
}

// writeRequest mirrors PUT runs/{id}/points/values.
type writeRequest struct {
	Points map[sim.PointID]any `json:"points"`
}

// timePayload mirrors GET runs/{id}/time.
type timePayload struct {
	Time string `json:"time"`
}

// aliasRequest mirrors PUT aliases/{alias}.
type aliasRequest struct {
	RunID sim.RunID `json:"runId"`
}
