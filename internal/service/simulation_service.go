package service

import (
	"context"
	"math/rand"
	"time"

	"workflow-go/internal/dto"

	"github.com/google/uuid"
)

// RandomSource yields floats in [0, 1).
type RandomSource func() float64

// defaultRandom is used when a constructor gets a nil RandomSource.
func defaultRandom() float64 {
	return rand.Float64()
}

// SimulationService produces placeholder training metrics and prediction events.
// There is no model behind any of the numbers.
type SimulationService struct {
	datasets *DatasetService
	random   RandomSource
	interval time.Duration
	now      func() time.Time
}

// NewSimulationService creates a SimulationService emitting one event per interval.
// A nil random uses math/rand.
func NewSimulationService(datasets *DatasetService, random RandomSource, interval time.Duration) *SimulationService {
	if random == nil {
		random = defaultRandom
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &SimulationService{
		datasets: datasets,
		random:   random,
		interval: interval,
		now:      time.Now,
	}
}

// Metrics returns one set of simulated quality metrics.
func (s *SimulationService) Metrics() dto.Metrics {
	return dto.Metrics{
		Accuracy:  s.between(90, 10),
		Precision: s.between(88, 8),
		Recall:    s.between(85, 12),
		F1Score:   s.between(87, 10),
	}
}

// Train pretends to train on a dataset. A non-empty datasetID must belong to ownerID.
func (s *SimulationService) Train(ownerID, datasetID string) (*dto.TrainResponse, error) {
	if datasetID != "" {
		if _, err := s.datasets.Get(ownerID, datasetID); err != nil {
			return nil, err
		}
	}
	return &dto.TrainResponse{
		Status:  "model_trained",
		Metrics: s.Metrics(),
	}, nil
}

// Event builds one simulated prediction.
func (s *SimulationService) Event() dto.PredictionEvent {
	prediction := "fail"
	if s.random() > 0.3 {
		prediction = "pass"
	}
	return dto.PredictionEvent{
		ID:         uuid.NewString(),
		Timestamp:  s.now().UTC(),
		Prediction: prediction,
		Confidence: s.between(70, 30),
	}
}

// Stream calls emit with a fresh event every interval until ctx is done or emit
// fails. The ticker is stopped before Stream returns.
func (s *SimulationService) Stream(ctx context.Context, emit func(dto.PredictionEvent) error) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// A tick and a cancellation can be ready together; cancellation wins.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := emit(s.Event()); err != nil {
				return err
			}
		}
	}
}

func (s *SimulationService) between(low, span float64) float64 {
	return s.random()*span + low
}
