package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"mltrain/pkg/api"
)

// InMemoryBackend is a Backend for tests. Jobs complete immediately unless a
// status sequence is scripted, and every request is recorded so tests can
// assert on exactly what would have crossed the wire.
type InMemoryBackend struct {
	mu sync.Mutex

	TrainingJobRequests []*api.CreateTrainingJobRequest
	ModelRequests       []*api.CreateModelRequest
	EndpointRequests    []*api.CreateEndpointRequest
	DeletedEndpoints    []string
	DescribeJobCalls    int

	// JobStatuses[jobName] is consumed one status per DescribeTrainingJob
	// call; once drained (or if unset) the job reports Completed.
	JobStatuses map[string][]string
	// EndpointStatuses works the same way for DescribeEndpoint, defaulting
	// to InService.
	EndpointStatuses map[string][]string

	// FailJobs makes every job report Failed with this reason when set.
	FailureReason string

	// InvokeHandler, when set, produces the invocation response body.
	InvokeHandler func(endpointName string, body []byte) (any, error)
}

func NewInMemoryBackend() *InMemoryBackend {
	return &InMemoryBackend{
		JobStatuses:      make(map[string][]string),
		EndpointStatuses: make(map[string][]string),
	}
}

func (b *InMemoryBackend) artifactPath(jobName string) string {
	return fmt.Sprintf("s3://artifacts/%s/output/model.tar.gz", jobName)
}

func (b *InMemoryBackend) CreateTrainingJob(ctx context.Context, req *api.CreateTrainingJobRequest) (*api.CreateTrainingJobResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.TrainingJobRequests = append(b.TrainingJobRequests, req)
	return &api.CreateTrainingJobResponse{JobName: req.JobName}, nil
}

func (b *InMemoryBackend) DescribeTrainingJob(ctx context.Context, jobName string) (*api.DescribeTrainingJobResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.DescribeJobCalls++

	if b.FailureReason != "" {
		return &api.DescribeTrainingJobResponse{JobName: jobName, Status: api.JobFailed, FailureReason: b.FailureReason}, nil
	}

	if pending := b.JobStatuses[jobName]; len(pending) > 0 {
		status := pending[0]
		b.JobStatuses[jobName] = pending[1:]
		res := &api.DescribeTrainingJobResponse{JobName: jobName, Status: status}
		if status == api.JobCompleted {
			res.ModelArtifacts = b.artifactPath(jobName)
		}
		return res, nil
	}

	return &api.DescribeTrainingJobResponse{
		JobName:        jobName,
		Status:         api.JobCompleted,
		ModelArtifacts: b.artifactPath(jobName),
	}, nil
}

func (b *InMemoryBackend) CreateModel(ctx context.Context, req *api.CreateModelRequest) (*api.CreateModelResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ModelRequests = append(b.ModelRequests, req)
	return &api.CreateModelResponse{ModelName: req.ModelName}, nil
}

func (b *InMemoryBackend) CreateEndpoint(ctx context.Context, req *api.CreateEndpointRequest) (*api.CreateEndpointResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.EndpointRequests = append(b.EndpointRequests, req)
	return &api.CreateEndpointResponse{EndpointName: req.EndpointName}, nil
}

func (b *InMemoryBackend) DescribeEndpoint(ctx context.Context, endpointName string) (*api.DescribeEndpointResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if pending := b.EndpointStatuses[endpointName]; len(pending) > 0 {
		status := pending[0]
		b.EndpointStatuses[endpointName] = pending[1:]
		return &api.DescribeEndpointResponse{EndpointName: endpointName, Status: status}, nil
	}

	return &api.DescribeEndpointResponse{EndpointName: endpointName, Status: api.EndpointInService}, nil
}

func (b *InMemoryBackend) DeleteEndpoint(ctx context.Context, endpointName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.DeletedEndpoints = append(b.DeletedEndpoints, endpointName)
	return nil
}

func (b *InMemoryBackend) InvokeEndpoint(ctx context.Context, endpointName string, req, res any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	b.mu.Lock()
	handler := b.InvokeHandler
	b.mu.Unlock()

	if handler == nil {
		return fmt.Errorf("no invoke handler configured for endpoint %s", endpointName)
	}

	out, err := handler(endpointName, body)
	if err != nil {
		return err
	}

	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, res)
}
