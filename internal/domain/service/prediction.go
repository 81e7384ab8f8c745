package service

import (
	"context"

	"FxSignals/internal/domain/models"
)

// PredictionResponse is a raw reply from the prediction service.
type PredictionResponse struct {
	Status int
	Body   []byte
}

// PredictionService generates signals remotely. Any status code is a response;
// only failures to get one are returned as errors.
type PredictionService interface {
	GenerateSignals(ctx context.Context, p models.TradingParameters) (*PredictionResponse, error)
}
