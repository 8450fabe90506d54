package estimator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mltrain/internal/platform"
	"mltrain/pkg/api"

	"github.com/google/uuid"
)

// Model is a deployable descriptor: the training image, the artifact
// location it produced, and the role to run it under. It is created by
// Estimator.CreateModel and consumed by Deploy.
type Model struct {
	Image             string
	ModelDataLocation string
	Role              string
	Name              string

	backend      platform.Backend
	pollInterval time.Duration
	newPredictor PredictorFactory
}

// Deploy registers the model with the platform, creates an endpoint for it,
// and blocks until the endpoint is in service. The returned Predictor's
// concrete type is determined by the algorithm that produced the model.
func (m *Model) Deploy(ctx context.Context, instanceCount int, instanceType string) (Predictor, error) {
	if instanceCount <= 0 {
		return nil, fmt.Errorf("%w: instance count must be positive, got %d", ErrInvalidConfig, instanceCount)
	}
	if instanceType == "" {
		return nil, fmt.Errorf("%w: instance type is required", ErrInvalidConfig)
	}

	modelName := fmt.Sprintf("%s-model-%s", m.Name, uuid.New().String()[:8])
	if _, err := m.backend.CreateModel(ctx, &api.CreateModelRequest{
		ModelName:         modelName,
		Image:             m.Image,
		ModelDataLocation: m.ModelDataLocation,
		Role:              m.Role,
	}); err != nil {
		return nil, fmt.Errorf("error registering model %s: %w", modelName, err)
	}

	endpointName := fmt.Sprintf("%s-endpoint", modelName)
	if _, err := m.backend.CreateEndpoint(ctx, &api.CreateEndpointRequest{
		EndpointName:  endpointName,
		ModelName:     modelName,
		InstanceCount: instanceCount,
		InstanceType:  instanceType,
	}); err != nil {
		return nil, fmt.Errorf("error creating endpoint %s: %w", endpointName, err)
	}
	slog.Info("deploying endpoint", "endpoint_name", endpointName, "model_name", modelName)

	if err := m.waitForEndpoint(ctx, endpointName); err != nil {
		return nil, err
	}
	slog.Info("endpoint in service", "endpoint_name", endpointName)

	if m.newPredictor == nil {
		return NewRealTimePredictor(endpointName, m.backend), nil
	}
	return m.newPredictor(endpointName, m.backend), nil
}

func (m *Model) waitForEndpoint(ctx context.Context, endpointName string) error {
	interval := m.pollInterval
	if interval == 0 {
		interval = defaultPollInterval
	}

	for {
		desc, err := m.backend.DescribeEndpoint(ctx, endpointName)
		if err != nil {
			return fmt.Errorf("error describing endpoint %s: %w", endpointName, err)
		}

		switch desc.Status {
		case api.EndpointInService:
			return nil
		case api.EndpointFailed:
			return fmt.Errorf("endpoint %s failed: %s", endpointName, desc.FailureReason)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
