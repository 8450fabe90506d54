package estimator

import (
	"context"

	"mltrain/internal/platform"
)

// Predictor is a local handle bound to a live endpoint. Concrete predictors
// add the algorithm-specific request/response encoding on top.
type Predictor interface {
	EndpointName() string
	Delete(ctx context.Context) error
}

// PredictorFactory builds the algorithm-specific predictor for a freshly
// deployed endpoint.
type PredictorFactory func(endpointName string, backend platform.Backend) Predictor

// RealTimePredictor is the base predictor: it knows its endpoint and how to
// reach the backend, nothing about payload shapes.
type RealTimePredictor struct {
	endpointName string
	backend      platform.Backend
}

func NewRealTimePredictor(endpointName string, backend platform.Backend) *RealTimePredictor {
	return &RealTimePredictor{endpointName: endpointName, backend: backend}
}

func (p *RealTimePredictor) EndpointName() string {
	return p.endpointName
}

// Invoke posts req to the endpoint and decodes the response into res.
func (p *RealTimePredictor) Invoke(ctx context.Context, req, res any) error {
	return p.backend.InvokeEndpoint(ctx, p.endpointName, req, res)
}

// Delete tears the endpoint down. The predictor is unusable afterwards.
func (p *RealTimePredictor) Delete(ctx context.Context) error {
	return p.backend.DeleteEndpoint(ctx, p.endpointName)
}
