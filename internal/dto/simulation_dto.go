package dto

import "time"

// Metrics simulated model quality, in percent
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1Score"`
}

// TrainRequest optional dataset to "train" on
type TrainRequest struct {
	DatasetID string `json:"datasetId"`
}

// TrainResponse result of a simulated training run
type TrainResponse struct {
	Status  string  `json:"status"`
	Metrics Metrics `json:"metrics"`
}

// PredictionEvent one push stream event
type PredictionEvent struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Prediction string    `json:"prediction"`
	Confidence float64   `json:"confidence"`
}
