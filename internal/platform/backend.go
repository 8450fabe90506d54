// Package platform talks to the managed training/hosting service. The
// Backend interface is the narrow remote-call boundary; everything above it
// (estimators, models, predictors) is pure local logic, so tests substitute
// an in-memory backend instead of patching internals.
package platform

import (
	"context"

	"mltrain/pkg/api"
)

type Backend interface {
	CreateTrainingJob(ctx context.Context, req *api.CreateTrainingJobRequest) (*api.CreateTrainingJobResponse, error)
	DescribeTrainingJob(ctx context.Context, jobName string) (*api.DescribeTrainingJobResponse, error)

	CreateModel(ctx context.Context, req *api.CreateModelRequest) (*api.CreateModelResponse, error)

	CreateEndpoint(ctx context.Context, req *api.CreateEndpointRequest) (*api.CreateEndpointResponse, error)
	DescribeEndpoint(ctx context.Context, endpointName string) (*api.DescribeEndpointResponse, error)
	DeleteEndpoint(ctx context.Context, endpointName string) error

	// InvokeEndpoint posts req as JSON to the endpoint's invocation path and
	// decodes the response into res.
	InvokeEndpoint(ctx context.Context, endpointName string, req, res any) error
}
